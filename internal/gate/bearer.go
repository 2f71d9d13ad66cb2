package gate

import (
	"context"
	"strings"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/token"
)

const bearerPrefix = "Bearer "

// ExtractBearer достаёт токен из значения заголовка Authorization.
// Пустой заголовок — KindMissingCredential; другая схема или пустой токен —
// KindMalformedCredential.
func ExtractBearer(header string) (string, error) {
	const op = "gate.ExtractBearer"

	if header == "" {
		return "", autherr.E(op, autherr.KindMissingCredential, nil)
	}

	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", autherr.E(op, autherr.KindMalformedCredential, nil)
	}

	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return "", autherr.E(op, autherr.KindMalformedCredential, nil)
	}

	return raw, nil
}

// Bearer проверяет access-токены. Refresh-токен с валидной подписью
// отклоняется как KindWrongCredentialType.
type Bearer struct {
	tokens *token.Manager
}

// NewBearer создаёт Bearer поверх менеджера токенов.
func NewBearer(tokens *token.Manager) *Bearer {
	return &Bearer{tokens: tokens}
}

// Verify проверяет сырой access-токен (без префикса "Bearer ").
func (b *Bearer) Verify(_ context.Context, raw string) (*models.Identity, error) {
	const op = "gate.Bearer.Verify"

	if raw == "" {
		return nil, autherr.E(op, autherr.KindMissingCredential, nil)
	}

	claims, err := b.tokens.ValidateAccessToken(raw)
	if err != nil {
		return nil, err
	}

	id, err := claims.Identity()
	if err != nil {
		return nil, autherr.E(op, autherr.KindMalformedCredential, err)
	}

	return &id, nil
}
