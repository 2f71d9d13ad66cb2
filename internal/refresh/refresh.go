// refresh — серверное хранилище записей refresh-токенов поверх storage.RefreshTokenStorage.
//
// Основные аспекты:
//   - сырой токен не сохраняется: ключ записи — hex(HMAC-SHA256(key, token));
//   - Validate/Revoke/Consume работают в контексте запроса и при ошибке
//     хранилища возвращают KindStorageFailure (fail closed);
//   - Consume отзывает запись ровно один раз: проигравший в гонке ротаций
//     получает KindRevoked.
package refresh

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/cache"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
	"github.com/pribylovaa/go-league-auth/internal/storage"
)

// Store — хранилище записей refresh-токенов. Безопасно для конкурентного использования,
// если переданное storage.RefreshTokenStorage потокобезопасно.
type Store struct {
	storage  storage.RefreshTokenStorage
	key      []byte
	cache    cache.RevocationCache // может быть nil
	cacheTTL time.Duration
	now      func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithCache подключает denylist отозванных токенов; ttl — сколько держать пометку
// (обычно TTL refresh-токена).
func WithCache(c cache.RevocationCache, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создаёт Store. key — ключ keyed digest (процессный секрет).
func New(st storage.RefreshTokenStorage, key []byte, opts ...Option) *Store {
	s := &Store{
		storage: st,
		key:     append([]byte(nil), key...),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

// Hash возвращает ключ записи для токена.
func (s *Store) Hash(token string) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}

// Store сохраняет запись для токена и возвращает её ID.
// Дубликат хэша возвращается как storage.ErrAlreadyExists.
func (s *Store) Store(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) (uuid.UUID, error) {
	const op = "refresh.Store"

	lg := log.From(ctx)

	rec := &models.RefreshTokenRecord{
		ID:        uuid.New(),
		TokenHash: s.Hash(token),
		UserID:    userID,
		CreatedAt: s.now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}

	if err := s.storage.SaveRefreshToken(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}

		lg.Error("refresh_save_failed",
			slog.String("op", op),
			slog.String("user_id", userID.String()),
			slog.String("err", err.Error()),
		)
		return uuid.Nil, autherr.E(op, autherr.KindStorageFailure, err)
	}

	return rec.ID, nil
}

// Validate проверяет запись токена и возвращает ID пользователя.
// Ошибки: KindNotFound, KindRevoked, KindExpired, KindStorageFailure.
func (s *Store) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	const op = "refresh.Validate"

	lg := log.From(ctx)
	hash := s.Hash(token)

	if s.cache != nil {
		revoked, err := s.cache.IsRevoked(ctx, hash)
		switch {
		case err != nil:
			lg.Warn("refresh_cache_lookup_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		case revoked:
			lg.Warn("refresh_revoked_cached", slog.String("op", op))
			return uuid.Nil, autherr.E(op, autherr.KindRevoked, nil)
		}
	}

	rec, err := s.storage.RefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_lookup_not_found", slog.String("op", op))
			return uuid.Nil, autherr.E(op, autherr.KindNotFound, err)
		}

		lg.Error("refresh_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return uuid.Nil, autherr.E(op, autherr.KindStorageFailure, err)
	}

	if rec.Revoked() {
		lg.Warn("refresh_revoked",
			slog.String("op", op),
			slog.String("user_id", rec.UserID.String()),
		)
		return uuid.Nil, autherr.E(op, autherr.KindRevoked, nil)
	}

	if !s.now().Before(rec.ExpiresAt) {
		lg.Warn("refresh_expired",
			slog.String("op", op),
			slog.String("user_id", rec.UserID.String()),
		)
		return uuid.Nil, autherr.E(op, autherr.KindExpired, nil)
	}

	return rec.UserID, nil
}

// Revoke отзывает запись. Идемпотентно: повторный отзыв не ошибка.
// Отсутствующая запись — KindNotFound.
func (s *Store) Revoke(ctx context.Context, token string) error {
	const op = "refresh.Revoke"

	if _, err := s.revoke(ctx, op, token); err != nil {
		return err
	}

	return nil
}

// Consume отзывает активную запись ровно один раз.
// Если запись уже была отозвана (в т.ч. параллельной ротацией) — KindRevoked.
func (s *Store) Consume(ctx context.Context, token string) error {
	const op = "refresh.Consume"

	revokedNow, err := s.revoke(ctx, op, token)
	if err != nil {
		return err
	}

	if !revokedNow {
		log.From(ctx).Warn("refresh_reuse_detected", slog.String("op", op))
		return autherr.E(op, autherr.KindRevoked, nil)
	}

	return nil
}

func (s *Store) revoke(ctx context.Context, op, token string) (bool, error) {
	lg := log.From(ctx)
	hash := s.Hash(token)

	revokedNow, err := s.storage.RevokeRefreshToken(ctx, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, autherr.E(op, autherr.KindNotFound, err)
		}

		lg.Error("refresh_revoke_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return false, autherr.E(op, autherr.KindStorageFailure, err)
	}

	if s.cache != nil {
		if err := s.cache.MarkRevoked(ctx, hash, s.cacheTTL); err != nil {
			lg.Warn("refresh_cache_mark_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return revokedNow, nil
}

// DeleteExpired удаляет просроченные записи (вызывается janitor-ом).
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	const op = "refresh.DeleteExpired"

	n, err := s.storage.DeleteExpiredRefreshTokens(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
