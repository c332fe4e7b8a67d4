// Package response формирует JSON ответы HTTP API, в том числе ответы об ошибках.
package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	authentities "notekeeper/internal/auth/domain/entities"
	authservices "notekeeper/internal/auth/domain/services"
	noteentities "notekeeper/internal/notes/domain/entities"
	"notekeeper/pkg/logger"
)

// Сообщения, которые видит клиент.
const (
	MsgCouldNotValidate   = "Could not validate credentials"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUsernameExists     = "Username already exists"
	MsgNoteNotFound       = "Note not found"
	MsgInternalError      = "Internal server error"
	MsgTooManyRequests    = "Too many requests"
	MsgRouteNotFound      = "Route not found"
	MsgVersionConflictFmt = "Version conflict. Current: %d, provided: %d"

	HeaderWWWAuthenticate = "WWW-Authenticate"
	BearerChallenge       = "Bearer"

	logUnhandledError = "unhandled error while serving request"
)

// Error отправляет тело {"error": message} с указанным статусом.
func Error(c fiber.Ctx, status int, message string) error {
	if err := c.Status(status).JSON(fiber.Map{"error": message}); err != nil {
		return fmt.Errorf("sending error response: %w", err)
	}
	return nil
}

// Unauthorized отправляет 401 с заголовком WWW-Authenticate.
func Unauthorized(c fiber.Ctx) error {
	c.Set(HeaderWWWAuthenticate, BearerChallenge)
	return Error(c, http.StatusUnauthorized, MsgCouldNotValidate)
}

// JSON отправляет тело с указанным статусом.
func JSON(c fiber.Ctx, status int, body any) error {
	if err := c.Status(status).JSON(body); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// FromError переводит доменную ошибку в HTTP ответ.
// Неизвестные ошибки логируются и превращаются в 500 без подробностей.
func FromError(ctx context.Context, c fiber.Ctx, err error) error {
	var conflict *noteentities.VersionConflictError

	switch {
	case errors.As(err, &conflict):
		return Error(c, http.StatusConflict, fmt.Sprintf(MsgVersionConflictFmt, conflict.Current, conflict.Provided))
	case errors.Is(err, noteentities.ErrNoteNotFound):
		return Error(c, http.StatusNotFound, MsgNoteNotFound)
	case errors.Is(err, authservices.ErrUsernameAlreadyExists):
		return Error(c, http.StatusBadRequest, MsgUsernameExists)
	case errors.Is(err, authservices.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, authservices.ErrUnauthenticated):
		logger.Log(ctx).Debug(ctx, MsgCouldNotValidate, zap.Error(err))
		return Unauthorized(c)
	case errors.Is(err, authentities.ErrEmptyUsername),
		errors.Is(err, authentities.ErrEmptyPassword),
		errors.Is(err, authentities.ErrPasswordTooLong),
		errors.Is(err, authentities.ErrEmptyEmail):
		return Error(c, http.StatusBadRequest, err.Error())
	}

	logger.Log(ctx).Error(ctx, logUnhandledError, zap.Error(err))
	return Error(c, http.StatusInternalServerError, MsgInternalError)
}
