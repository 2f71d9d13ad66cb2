package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pribylovaa/go-league-auth/internal/http/cookie"
	apierrors "github.com/pribylovaa/go-league-auth/internal/http/errors"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/signer"
)

// Authenticator — сценарии аутентификации, которые вызывают хендлеры.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, models.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, models.Identity, error)
	Logout(ctx context.Context, refreshToken string) error
	LoginSession(ctx context.Context, email, password string) (*models.Session, error)
	LogoutSession(ctx context.Context, sessionID string) error
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Auth      Authenticator
	Signer    *signer.Signer
	Cookie    cookie.Policy
	LoginPath string

	validate *validator.Validate
}

func New(auth Authenticator, sg *signer.Signer, p cookie.Policy, loginPath string) *Handlers {
	return &Handlers{
		Auth:      auth,
		Signer:    sg,
		Cookie:    p,
		LoginPath: loginPath,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// decodeValid разбирает тело и проверяет теги validate.
// Любая ошибка — apierrors.ErrInvalidArgument.
func (h *Handlers) decodeValid(r *http.Request, value any) error {
	if err := decodeStrict(r, value); err != nil {
		return fmt.Errorf("decode: %w", apierrors.ErrInvalidArgument)
	}
	if err := h.validate.Struct(value); err != nil {
		return fmt.Errorf("validate: %w", apierrors.ErrInvalidArgument)
	}
	return nil
}
