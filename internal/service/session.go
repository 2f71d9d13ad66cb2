package service

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
	"github.com/pribylovaa/go-league-auth/internal/pkg/redact"
)

// LoginSession выполняет интерактивный вход и создаёт серверную сессию.
func (s *Service) LoginSession(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "service.session.LoginSession"

	id, err := s.authenticate(ctx, op, email, password)
	if err != nil {
		s.metrics.Login(metrics.FlowSession, err)
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, id)
	s.metrics.Login(metrics.FlowSession, err)
	if err != nil {
		log.From(ctx).Error("session_create_failed",
			slog.String("op", op),
			slog.String("user_id", id.UserID.String()),
			slog.String("err", err.Error()),
		)
		return nil, unavailable(op, err)
	}

	log.From(ctx).Info("session_created",
		slog.String("op", op),
		slog.String("user_id", id.UserID.String()),
		slog.String("session_id", redact.SessionID(sess.ID)),
	)

	return sess, nil
}

// LogoutSession удаляет сессию. Идемпотентно.
func (s *Service) LogoutSession(ctx context.Context, sessionID string) error {
	const op = "service.session.LogoutSession"

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return unavailable(op, err)
	}

	log.From(ctx).Info("session_deleted",
		slog.String("op", op),
		slog.String("session_id", redact.SessionID(sessionID)),
	)

	return nil
}
