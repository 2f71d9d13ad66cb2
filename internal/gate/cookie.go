package gate

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
	"github.com/pribylovaa/go-league-auth/internal/pkg/redact"
	"github.com/pribylovaa/go-league-auth/internal/session"
	"github.com/pribylovaa/go-league-auth/internal/signer"
)

// Cookie проверяет подписанный id сессии: подпись, затем Validate и Refresh
// в таблице сессий. Неверная подпись отклоняется без обращения к таблице.
type Cookie struct {
	signer   *signer.Signer
	sessions session.Store
}

// NewCookie создаёт Cookie-гейт.
func NewCookie(s *signer.Signer, sessions session.Store) *Cookie {
	return &Cookie{signer: s, sessions: sessions}
}

// Verify реализует Verifier.
func (c *Cookie) Verify(ctx context.Context, value string) (*models.Identity, error) {
	s, err := c.VerifySession(ctx, value)
	if err != nil {
		return nil, err
	}

	id := s.Identity()
	return &id, nil
}

// VerifySession проверяет значение cookie и возвращает продлённую сессию.
func (c *Cookie) VerifySession(ctx context.Context, value string) (*models.Session, error) {
	const op = "gate.Cookie.VerifySession"

	if value == "" {
		return nil, autherr.E(op, autherr.KindMissingCredential, nil)
	}

	id, ok := c.signer.Verify(value)
	if !ok {
		return nil, autherr.E(op, autherr.KindInvalidSignature, nil)
	}

	lg := log.From(ctx).With(slog.String("session_id", redact.SessionID(id)))

	if _, err := c.sessions.Validate(ctx, id); err != nil {
		lg.Info("session_rejected",
			slog.String("op", op),
			slog.String("kind", autherr.KindOf(err).String()),
		)
		return nil, failClosed(op, err)
	}

	// Validate и Refresh — две отдельные операции; удаление между ними
	// даёт NotFound, и запрос отклоняется.
	s, err := c.sessions.Refresh(ctx, id)
	if err != nil {
		lg.Info("session_refresh_rejected",
			slog.String("op", op),
			slog.String("kind", autherr.KindOf(err).String()),
		)
		return nil, failClosed(op, err)
	}

	return s, nil
}

// failClosed сохраняет вид ошибки из таксономии, остальное считает сбоем хранилища.
func failClosed(op string, err error) error {
	if autherr.KindOf(err) == autherr.KindUnknown {
		return autherr.E(op, autherr.KindStorageFailure, err)
	}
	return err
}
