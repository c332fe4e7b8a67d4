// Package http содержит компоненты для HTTP сервера.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	authapi "notekeeper/internal/auth/ports/api"
	"notekeeper/internal/gateway/adapters/http/auth"
	"notekeeper/internal/gateway/adapters/http/middleware"
	"notekeeper/internal/gateway/adapters/http/notes"
	"notekeeper/internal/gateway/adapters/http/response"
	notesapi "notekeeper/internal/notes/ports/api"
	"notekeeper/pkg/logger"
)

// AppName - имя fiber приложения.
const AppName = "notekeeper"

// HealthCheck проверяет доступность хранилища.
type HealthCheck func(ctx context.Context) error

// Deps - зависимости HTTP API.
type Deps struct {
	Auth    authapi.AuthUseCase
	Gate    authapi.AuthGate
	Notes   notesapi.NoteService
	Limiter middleware.Limiter
	Health  HealthCheck
}

// NewApp создает fiber приложение с единым форматом ошибок.
// Значения из запроса копируются (Immutable), поэтому их можно хранить после ответа.
func NewApp(readTimeout, writeTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      AppName,
		Immutable:    true,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		ErrorHandler: ErrorHandler,
	})
}

// ErrorHandler отвечает {"error": ...} на ошибки, которые не обработал маршрут.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Error(c, fiberErr.Code, fiberErr.Message)
	}

	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Error(requestCtx, "unhandled handler error", zap.Error(err))
	return response.Error(c, http.StatusInternalServerError, response.MsgInternalError)
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Deps) {
	authHandler := auth.NewHandler(deps.Auth)
	notesHandler := notes.NewHandler(deps.Notes)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewLoggerMiddleware())

	app.Get("/", func(c fiber.Ctx) error {
		return response.JSON(c, http.StatusOK, fiber.Map{"message": "Notes API"})
	})
	app.Get("/health", healthHandler(deps.Health))

	authRoutes := app.Group("/auth")
	if deps.Limiter != nil {
		authRoutes.Use(middleware.NewRateLimitMiddleware(deps.Limiter))
	}
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	// Маршруты заметок (требуют авторизации).
	notesRoutes := app.Group("/notes")
	notesRoutes.Use(middleware.NewAuthMiddleware(deps.Gate))
	notesRoutes.Post("/", notesHandler.CreateNote)
	notesRoutes.Get("/", notesHandler.ListNotes)
	notesRoutes.Get("/:note_id", notesHandler.GetNote)
	notesRoutes.Put("/:note_id", notesHandler.UpdateNote)
	notesRoutes.Delete("/:note_id", notesHandler.DeleteNote)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return response.Error(c, http.StatusNotFound, response.MsgRouteNotFound)
	})
}

func healthHandler(check HealthCheck) fiber.Handler {
	return func(c fiber.Ctx) error {
		if check != nil {
			requestCtx := middleware.RequestContext(c)
			if err := check(requestCtx); err != nil {
				logger.Log(requestCtx).Warn(requestCtx, "health check failed", zap.Error(err))
				return response.JSON(c, http.StatusServiceUnavailable, fiber.Map{"status": "unavailable"})
			}
		}
		return response.JSON(c, http.StatusOK, fiber.Map{"status": "ok"})
	}
}
