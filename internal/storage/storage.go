// storage задаёт контракты персистентности: чтение учётных записей
// и CRUD над записями refresh-токенов.
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-league-auth/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (token_hash).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage читает учётные записи пользователей. Запись/регистрация вне этого сервиса.
type UserStorage interface {
	// UserByEmail находит пользователя по email (регистронезависимо).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RefreshTokenStorage выполняет операции над записями refresh-токенов.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новую запись. Дубликат хэша — ErrAlreadyExists.
	SaveRefreshToken(ctx context.Context, rec *models.RefreshTokenRecord) error
	// RefreshTokenByHash находит запись по хэшу токена.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshTokenRecord, error)
	// RevokeRefreshToken выставляет revoked_at = at, если запись ещё активна.
	// Возвращает:
	//	(true, nil)  — запись была активна и отозвана сейчас;
	//	(false, nil) — запись уже была отозвана ранее;
	//	(false, ErrNotFound) — записи нет.
	RevokeRefreshToken(ctx context.Context, hash string, at time.Time) (bool, error)
	// DeleteExpiredRefreshTokens удаляет записи с expires_at <= now.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	RefreshTokenStorage
	Close()
}
