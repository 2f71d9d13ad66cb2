package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-league-auth/internal/models"
)

// LoginRequest — тело POST /api/auth/login и JSON-вариант POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// RefreshRequest — тело POST /api/auth/refresh и /api/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type IdentityResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

// TokenResponse — пара токенов и владелец.
type TokenResponse struct {
	TokenType        string           `json:"token_type"`
	AccessToken      string           `json:"access_token"`
	RefreshToken     string           `json:"refresh_token"`
	AccessExpiresAt  time.Time        `json:"access_expires_at"`
	RefreshExpiresAt time.Time        `json:"refresh_expires_at"`
	User             IdentityResponse `json:"user"`
}

// SessionResponse — текущая сессия без её идентификатора.
type SessionResponse struct {
	User      IdentityResponse `json:"user"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func identityResponse(id models.Identity) IdentityResponse {
	return IdentityResponse{UserID: id.UserID, Email: id.Email, DisplayName: id.DisplayName}
}

func tokenResponse(p *models.TokenPair, id models.Identity) TokenResponse {
	return TokenResponse{
		TokenType:        "Bearer",
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
		User:             identityResponse(id),
	}
}
