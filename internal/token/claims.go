package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
)

// Type — тип токена в claim token_type.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims — полезная нагрузка access/refresh токенов.
// sub — UUID пользователя, jti — случайный UUID (уникальность refresh-токенов).
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	TokenType Type   `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID разбирает subject как UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	const op = "token.Claims.UserID"

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, autherr.E(op, autherr.KindMalformedCredential, fmt.Errorf("subject: %w", err))
	}

	return id, nil
}

// Identity собирает идентичность из claims.
func (c *Claims) Identity() (models.Identity, error) {
	id, err := c.UserID()
	if err != nil {
		return models.Identity{}, err
	}

	return models.Identity{
		UserID:      id,
		Email:       c.Email,
		DisplayName: c.Name,
	}, nil
}
