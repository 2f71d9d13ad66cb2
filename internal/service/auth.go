package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
	"github.com/pribylovaa/go-league-auth/internal/pkg/redact"
	"github.com/pribylovaa/go-league-auth/internal/storage"
)

// Login выполняет вход по email+пароль и выпускает пару токенов.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, models.Identity, error) {
	const op = "service.auth.Login"

	id, err := s.authenticate(ctx, op, email, password)
	if err != nil {
		s.metrics.Login(metrics.FlowAPI, err)
		return nil, models.Identity{}, err
	}

	pair, err := s.issue(ctx, id)
	s.metrics.Login(metrics.FlowAPI, err)
	if err != nil {
		return nil, models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("login_succeeded",
		slog.String("op", op),
		slog.String("user_id", id.UserID.String()),
	)

	return pair, id, nil
}

// Refresh ротирует refresh-токен: проверка подписи и записи, отзыв старой записи,
// выпуск новой пары, сохранение новой записи. Старая запись отзывается до того,
// как новая пара будет возвращена клиенту.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, models.Identity, error) {
	const op = "service.auth.Refresh"

	pair, id, err := s.rotate(ctx, refreshToken)
	s.metrics.RefreshRotation(err)
	if err != nil {
		return nil, models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	return pair, id, nil
}

func (s *Service) rotate(ctx context.Context, raw string) (*models.TokenPair, models.Identity, error) {
	const op = "service.auth.rotate"

	lg := log.From(ctx)

	// 1. Подпись/срок/тип и серверная запись.
	claims, err := s.tokens.ValidateRefreshToken(raw)
	if err != nil {
		lg.Warn("refresh_token_rejected",
			slog.String("op", op),
			slog.String("kind", autherr.KindOf(err).String()),
		)
		return nil, models.Identity{}, err
	}

	id, err := claims.Identity()
	if err != nil {
		return nil, models.Identity{}, autherr.E(op, autherr.KindMalformedCredential, err)
	}

	owner, err := s.refresh.Validate(ctx, raw)
	if err != nil {
		return nil, models.Identity{}, err
	}
	if owner != id.UserID {
		lg.Error("refresh_owner_mismatch",
			slog.String("op", op),
			slog.String("user_id", id.UserID.String()),
			slog.String("record_user_id", owner.String()),
		)
		return nil, models.Identity{}, autherr.E(op, autherr.KindInvalidSignature, nil)
	}

	// 2. Отзыв старой записи; проигравший в гонке получит KindRevoked.
	if err := s.refresh.Consume(ctx, raw); err != nil {
		return nil, models.Identity{}, unavailable(op, err)
	}

	// 3-4. Новая пара и её запись.
	pair, err := s.issue(ctx, id)
	if err != nil {
		return nil, models.Identity{}, err
	}

	lg.Info("refresh_rotated",
		slog.String("op", op),
		slog.String("user_id", id.UserID.String()),
	)

	return pair, id, nil
}

// Logout отзывает refresh-токен. Идемпотентно: уже отозванный, неизвестный
// или истёкший токен не ошибка. Токен с чужой/битой подписью — ошибка.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	const op = "service.auth.Logout"

	if _, err := s.tokens.ValidateRefreshToken(refreshToken); err != nil {
		if errors.Is(err, autherr.ErrExpired) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.refresh.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, autherr.ErrNotFound) {
			return nil
		}
		return unavailable(op, err)
	}

	log.From(ctx).Info("logout_succeeded", slog.String("op", op))

	return nil
}

// issueAttempts — попытки сохранить запись при коллизии хэша (новый jti на каждую).
const issueAttempts = 2

// issue выпускает пару токенов и сохраняет запись refresh-токена.
func (s *Service) issue(ctx context.Context, id models.Identity) (*models.TokenPair, error) {
	const op = "service.auth.issue"

	for attempt := 0; attempt < issueAttempts; attempt++ {
		pair, err := s.tokens.GeneratePair(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		_, err = s.refresh.Store(ctx, pair.RefreshToken, id.UserID, pair.RefreshExpiresAt)
		if err == nil {
			return pair, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return nil, unavailable(op, err)
		}
	}

	log.From(ctx).Error("refresh_token_collision",
		slog.String("op", op),
		slog.String("user_id", id.UserID.String()),
	)

	return nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenCollision)
}

// authenticate проверяет пару email+пароль. Для неизвестного email пароль
// всё равно сравнивается с фиктивным хэшем, чтобы время ответа не выдавало
// существование учётной записи.
func (s *Service) authenticate(ctx context.Context, op, email, password string) (models.Identity, error) {
	lg := log.From(ctx)

	normEmail := strings.ToLower(strings.TrimSpace(email))
	if normEmail == "" || password == "" {
		s.hasher.VerifyDummy(password)
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			lg.Info("login_failed",
				slog.String("op", op),
				slog.String("email", redact.Email(normEmail)),
				slog.String("reason", "unknown_email"),
			)
			return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("user_lookup_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
			slog.String("err", err.Error()),
		)
		// Наружу — обычный отказ входа; причина остаётся в логе.
		return models.Identity{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidCredentials,
			autherr.E(op, autherr.KindStorageFailure, err))
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		lg.Info("login_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("reason", "bad_password"),
		)
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user.Identity(), nil
}
