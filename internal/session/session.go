// session — таблица серверных сессий интерактивных клиентов со скользящим сроком жизни.
//
// Две реализации Store:
//   - Memory — таблица в памяти процесса под sync.RWMutex (один инстанс);
//   - redisstore.Store — общая таблица в Redis (несколько инстансов).
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
)

// DefaultTTL — срок жизни сессии, продлевается на каждый аутентифицированный запрос.
const DefaultTTL = 7 * 24 * time.Hour

// idBytes — энтропия идентификатора сессии.
const idBytes = 32

// Store — контракт таблицы сессий.
//
// Ошибки "сессии нет" возвращаются как autherr.ErrNotFound, истёкшая сессия
// в Validate — autherr.ErrExpired (и удаляется).
type Store interface {
	// Create создаёт сессию с новым непредсказуемым ID и сроком now+TTL.
	Create(ctx context.Context, id models.Identity) (*models.Session, error)
	// Get читает сессию без каких-либо изменений.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Validate возвращает сессию; истёкшую удаляет (lazy GC).
	Validate(ctx context.Context, id string) (*models.Session, error)
	// Refresh продлевает срок до now+TTL, если сессия есть и не истекла.
	Refresh(ctx context.Context, id string) (*models.Session, error)
	// Delete удаляет сессию. Идемпотентно.
	Delete(ctx context.Context, id string) error
	// CleanupExpired удаляет все истёкшие сессии и возвращает их число.
	CleanupExpired(ctx context.Context) (int, error)
}

// NewID генерирует непрозрачный идентификатор: 32 случайных байта в base64url.
// Алфавит base64url не содержит '.', поэтому ID безопасно подписывать signer-ом.
func NewID() (string, error) {
	const op = "session.NewID"

	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func notFound(op string) error { return autherr.E(op, autherr.KindNotFound, nil) }
func expired(op string) error  { return autherr.E(op, autherr.KindExpired, nil) }
