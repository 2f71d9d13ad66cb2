package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/storage"
)

// SaveRefreshToken сохраняет новую запись refresh-токена.
func (s *Storage) SaveRefreshToken(ctx context.Context, rec *models.RefreshTokenRecord) error {
	const op = "storage.postgres.SaveRefreshToken"

	query := `
        INSERT INTO refresh_tokens(id, token_hash, user_id, created_at, expires_at, revoked_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := s.db.Exec(ctx, query,
		rec.ID,
		rec.TokenHash,
		rec.UserID,
		rec.CreatedAt,
		rec.ExpiresAt,
		rec.RevokedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RefreshTokenByHash находит запись по хэшу токена.
func (s *Storage) RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshTokenRecord, error) {
	const op = "storage.postgres.RefreshTokenByHash"

	query := `
        SELECT id, token_hash, user_id, created_at, expires_at, revoked_at
        FROM refresh_tokens
        WHERE token_hash = $1
    `

	var rec models.RefreshTokenRecord
	err := s.db.QueryRow(ctx, query, hash).Scan(
		&rec.ID,
		&rec.TokenHash,
		&rec.UserID,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rec, nil
}

// RevokeRefreshToken отзывает запись, если она ещё активна.
// Условный UPDATE даёт ровно одного победителя при гонке двух ротаций.
func (s *Storage) RevokeRefreshToken(ctx context.Context, hash string, at time.Time) (bool, error) {
	const op = "storage.postgres.RevokeRefreshToken"

	const upd = `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL
		RETURNING id
	`

	var id string
	err := s.db.QueryRow(ctx, upd, hash, at).Scan(&id)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	const sel = `SELECT 1 FROM refresh_tokens WHERE token_hash = $1`

	var one int
	err = s.db.QueryRow(ctx, sel, hash).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return false, nil
}

// DeleteExpiredRefreshTokens удаляет просроченные записи и возвращает их число.
func (s *Storage) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredRefreshTokens"

	query := `
        DELETE FROM refresh_tokens
        WHERE expires_at <= $1
    `

	tag, err := s.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
