// storagetest — хранилища в памяти для тестов пакетов выше storage.
package storagetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/storage"
)

// RefreshTokens — storage.RefreshTokenStorage в памяти с той же семантикой,
// что у postgres: уникальный хэш, условный отзыв, удаление просроченных.
type RefreshTokens struct {
	mu      sync.Mutex
	records map[string]*models.RefreshTokenRecord

	// SaveErr, если задан, возвращается из SaveRefreshToken.
	SaveErr error

	lookupErr error
	revokeErr error
}

// FailLookups заставляет RefreshTokenByHash возвращать err (nil — снять сбой).
func (m *RefreshTokens) FailLookups(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupErr = err
}

// FailRevokes заставляет RevokeRefreshToken возвращать err (nil — снять сбой).
func (m *RefreshTokens) FailRevokes(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokeErr = err
}

var _ storage.RefreshTokenStorage = (*RefreshTokens)(nil)

func NewRefreshTokens() *RefreshTokens {
	return &RefreshTokens{records: make(map[string]*models.RefreshTokenRecord)}
}

func (m *RefreshTokens) SaveRefreshToken(_ context.Context, rec *models.RefreshTokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, ok := m.records[rec.TokenHash]; ok {
		return storage.ErrAlreadyExists
	}
	cp := *rec
	m.records[rec.TokenHash] = &cp
	return nil
}

func (m *RefreshTokens) RefreshTokenByHash(_ context.Context, hash string) (*models.RefreshTokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	rec, ok := m.records[hash]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *RefreshTokens) RevokeRefreshToken(_ context.Context, hash string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.revokeErr != nil {
		return false, m.revokeErr
	}
	rec, ok := m.records[hash]
	if !ok {
		return false, storage.ErrNotFound
	}
	if rec.RevokedAt != nil {
		return false, nil
	}
	rec.RevokedAt = &at
	return true, nil
}

func (m *RefreshTokens) DeleteExpiredRefreshTokens(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, rec := range m.records {
		if !now.Before(rec.ExpiresAt) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

// Len — число записей.
func (m *RefreshTokens) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Users — storage.UserStorage в памяти.
type Users struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.User
	email map[string]uuid.UUID
}

var _ storage.UserStorage = (*Users)(nil)

func NewUsers(users ...*models.User) *Users {
	u := &Users{byID: make(map[uuid.UUID]*models.User), email: make(map[string]uuid.UUID)}
	for _, x := range users {
		u.Add(x)
	}
	return u
}

// Add добавляет пользователя; email хранится в нижнем регистре (как citext).
func (u *Users) Add(x *models.User) {
	u.mu.Lock()
	defer u.mu.Unlock()

	cp := *x
	u.byID[x.ID] = &cp
	u.email[strings.ToLower(x.Email)] = x.ID
}

func (u *Users) UserByEmail(_ context.Context, email string) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	id, ok := u.email[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u.byID[id]
	return &cp, nil
}

func (u *Users) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	x, ok := u.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *x
	return &cp, nil
}
