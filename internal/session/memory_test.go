package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
)

// fakeClock — управляемые часы для тестов сроков.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testIdentity() models.Identity {
	return models.Identity{UserID: uuid.New(), Email: "coach@league.io", DisplayName: "Coach"}
}

func TestCreateValidate_MatchingFields(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	m := NewMemory(WithClock(clk.Now))
	ctx := context.Background()
	id := testIdentity()

	s, err := m.Create(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.NotContains(t, s.ID, ".")
	require.Equal(t, clk.Now().Add(7*24*time.Hour), s.ExpiresAt)

	got, err := m.Validate(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, *s, *got)
	require.Equal(t, id, got.Identity())
}

func TestCreate_UniqueIDs(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		s, err := m.Create(context.Background(), testIdentity())
		require.NoError(t, err)
		_, dup := seen[s.ID]
		require.False(t, dup)
		seen[s.ID] = struct{}{}
	}
	require.Equal(t, 100, m.Len())
}

func TestDelete_ThenValidateNone_AndIdempotent(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	s, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, s.ID))
	require.NoError(t, m.Delete(ctx, s.ID))

	_, err = m.Validate(ctx, s.ID)
	require.ErrorIs(t, err, autherr.ErrNotFound)
}

func TestValidate_ExpiredIsRemoved(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	m := NewMemory(WithClock(clk.Now))
	ctx := context.Background()
	s, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)

	clk.Advance(7*24*time.Hour + time.Second)

	// Get — чистое чтение: истёкшая сессия ещё на месте.
	_, err = m.Get(ctx, s.ID)
	require.NoError(t, err)

	_, err = m.Validate(ctx, s.ID)
	require.ErrorIs(t, err, autherr.ErrExpired)
	require.Equal(t, 0, m.Len())

	_, err = m.Get(ctx, s.ID)
	require.ErrorIs(t, err, autherr.ErrNotFound)
}

func TestRefresh_SlidesExpiry(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	m := NewMemory(WithClock(clk.Now))
	ctx := context.Background()
	s, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)

	clk.Advance(3 * 24 * time.Hour)
	r, err := m.Refresh(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, clk.Now().Add(7*24*time.Hour), r.ExpiresAt)
	require.Equal(t, s.CreatedAt, r.CreatedAt)

	// Без Refresh сессия истекла бы через 7 дней от создания, а не от последнего запроса.
	clk.Advance(5 * 24 * time.Hour)
	_, err = m.Validate(ctx, s.ID)
	require.NoError(t, err)
}

func TestRefresh_NoOpForMissingOrExpired(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	m := NewMemory(WithClock(clk.Now))
	ctx := context.Background()

	_, err := m.Refresh(ctx, "missing")
	require.ErrorIs(t, err, autherr.ErrNotFound)

	s, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)
	clk.Advance(8 * 24 * time.Hour)

	_, err = m.Refresh(ctx, s.ID)
	require.ErrorIs(t, err, autherr.ErrExpired)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ExpiresAt, got.ExpiresAt)
}

func TestCleanupExpired_SweepsOnlyExpired(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	m := NewMemory(WithClock(clk.Now), WithTTL(time.Hour))
	ctx := context.Background()

	old, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)
	clk.Advance(30 * time.Minute)
	fresh, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)
	clk.Advance(45 * time.Minute)

	n, err := m.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = m.Get(ctx, old.ID)
	require.ErrorIs(t, err, autherr.ErrNotFound)
	_, err = m.Get(ctx, fresh.ID)
	require.NoError(t, err)
}

func TestConcurrentRefresh_NeverLosesSession(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	s, err := m.Create(ctx, testIdentity())
	require.NoError(t, err)

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := m.Refresh(ctx, s.ID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := m.Get(ctx, s.ID)
			assert.NoError(t, err)
			_, err = m.Validate(ctx, s.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err = m.Get(ctx, s.ID)
	require.NoError(t, err)
}

func TestValidate_ConcurrentWithCleanup(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	m := NewMemory(WithClock(clk.Now))
	ctx := context.Background()

	ids := make([]string, 0, 32)
	for i := 0; i < 32; i++ {
		s, err := m.Create(ctx, testIdentity())
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	clk.Advance(8 * 24 * time.Hour)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := m.Validate(ctx, id)
			assert.Error(t, err)
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := m.CleanupExpired(ctx)
		assert.NoError(t, err)
	}()
	wg.Wait()

	require.Equal(t, 0, m.Len())
}
