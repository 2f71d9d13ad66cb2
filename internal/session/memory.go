package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pribylovaa/go-league-auth/internal/models"
)

// Memory — таблица сессий в памяти процесса.
//
// Дисциплина блокировок: Get/Validate берут RLock, Create/Refresh/Delete/CleanupExpired —
// Lock. Validate, обнаружив истёкшую сессию, отпускает RLock, берёт Lock и
// перепроверяет срок: параллельный Refresh мог успеть её продлить.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	ttl      time.Duration
	now      func() time.Time
}

// MemoryOption настраивает Memory.
type MemoryOption func(*Memory)

// WithTTL задаёт срок жизни сессии.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory создаёт пустую таблицу.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		sessions: make(map[string]models.Session),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}

	return m
}

func (m *Memory) Create(_ context.Context, id models.Identity) (*models.Session, error) {
	const op = "session.Memory.Create"

	sid, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := m.now().UTC()
	s := models.Session{
		ID:          sid,
		UserID:      id.UserID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[sid] = s
	m.mu.Unlock()

	return &s, nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.Session, error) {
	const op = "session.Memory.Get"

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, notFound(op)
	}

	return &s, nil
}

func (m *Memory) Validate(_ context.Context, id string) (*models.Session, error) {
	const op = "session.Memory.Validate"

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, notFound(op)
	}

	if !s.Expired(m.now()) {
		return &s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.sessions[id]
	if !ok {
		return nil, notFound(op)
	}
	if !cur.Expired(m.now()) {
		return &cur, nil
	}
	delete(m.sessions, id)

	return nil, expired(op)
}

func (m *Memory) Refresh(_ context.Context, id string) (*models.Session, error) {
	const op = "session.Memory.Refresh"

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, notFound(op)
	}

	now := m.now()
	if s.Expired(now) {
		return nil, expired(op)
	}

	// Срок только растёт.
	if next := now.UTC().Add(m.ttl); next.After(s.ExpiresAt) {
		s.ExpiresAt = next
		m.sessions[id] = s
	}

	return &s, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	return nil
}

func (m *Memory) CleanupExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed, nil
}

// Len возвращает число сессий в таблице.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

var _ Store = (*Memory)(nil)
