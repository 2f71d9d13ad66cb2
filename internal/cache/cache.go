// cache — Redis-кэш отозванных refresh-токенов (denylist).
//
// Кэш используется только для раннего отказа: отсутствие ключа ничего
// не доказывает, источник истины по принятию токена — PostgreSQL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "auth:rt:revoked:"

// RevocationCache — минимальный контракт denylist отозванных refresh-токенов.
type RevocationCache interface {
	// MarkRevoked помечает хэш отозванным на ttl (обычно ExpiresAt-now).
	MarkRevoked(ctx context.Context, hash string, ttl time.Duration) error
	// IsRevoked сообщает, помечен ли хэш отозванным.
	IsRevoked(ctx context.Context, hash string) (bool, error)
}

type redisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

// Connect создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Клиент общий для denylist и таблицы сессий,
// закрывает его владелец.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	const op = "cache.Connect"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rdb, nil
}

// NewWithClient оборачивает готовый клиент. Если prefix пустой — используется DefaultPrefix.
func NewWithClient(rdb redis.UniversalClient, prefix string) RevocationCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &redisCache{rdb: rdb, prefix: prefix}
}

func (c *redisCache) key(hash string) string { return c.prefix + hash }

func (c *redisCache) MarkRevoked(ctx context.Context, hash string, ttl time.Duration) error {
	const op = "cache.MarkRevoked"

	// Запись уже истекла — помечать нечего.
	if ttl <= 0 {
		return nil
	}

	if err := c.rdb.Set(ctx, c.key(hash), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *redisCache) IsRevoked(ctx context.Context, hash string) (bool, error) {
	const op = "cache.IsRevoked"

	err := c.rdb.Get(ctx, c.key(hash)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}
