// Package dto содержит объекты передачи данных HTTP API.
package dto

import (
	"time"

	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
)

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest содержит данные для входа. Принимается как JSON, так и форма OAuth2.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse содержит выданный токен доступа.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse содержит публичные данные пользователя.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse преобразует пользователя в ответ без хэша пароля.
func NewUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// NewTokenResponse преобразует выданный токен в ответ.
func NewTokenResponse(t *services.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken: t.Token,
		TokenType:   t.TokenType,
	}
}
