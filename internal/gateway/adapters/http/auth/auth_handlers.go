// Package auth содержит HTTP обработчики регистрации и входа.
package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/auth/ports/api"
	"notekeeper/internal/gateway/adapters/http/middleware"
	"notekeeper/internal/gateway/adapters/http/response"
	"notekeeper/internal/gateway/app/dto"
	"notekeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister = "auth handler: register"
	LogHandlerLogin    = "auth handler: login"

	ErrorInvalidRequest = "invalid request"
)

// Handler содержит HTTP обработчики для авторизации.
type Handler struct {
	auth api.AuthUseCase
}

// NewHandler создает новый экземпляр обработчика авторизации.
func NewHandler(auth api.AuthUseCase) *Handler {
	return &Handler{auth: auth}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *Handler) Register(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := c.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return response.Error(c, http.StatusBadRequest, ErrorInvalidRequest)
	}

	user, err := h.auth.Register(requestCtx, req.Username, req.Email, req.Password)
	if err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, dto.NewUserResponse(user))
}

// Login обрабатывает запрос на вход пользователя.
func (h *Handler) Login(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return response.Error(c, http.StatusBadRequest, ErrorInvalidRequest)
	}

	token, err := h.auth.Login(requestCtx, req.Username, req.Password)
	if err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, dto.NewTokenResponse(token))
}
