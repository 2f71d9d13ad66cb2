// redisstore — таблица сессий в Redis для многоинстансного развёртывания.
//
// Сессия хранится JSON-строкой под ключом prefix+id с TTL = ExpiresAt-now,
// поэтому истёкшие ключи Redis удаляет сам и CleanupExpired ничего не делает.
// Refresh пишет через SET XX: удалённая сессия не воскрешается.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/session"
)

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "auth:sess:"

const maxCreateAttempts = 3

// Store — реализация session.Store поверх Redis.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithTTL задаёт срок жизни сессии.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix задаёт префикс ключей.
func WithPrefix(p string) Option {
	return func(s *Store) {
		if p != "" {
			s.prefix = p
		}
	}
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создаёт Store поверх готового клиента.
func New(rdb redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		rdb:    rdb,
		prefix: DefaultPrefix,
		ttl:    session.DefaultTTL,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) Create(ctx context.Context, id models.Identity) (*models.Session, error) {
	const op = "session.redisstore.Create"

	now := s.now().UTC()
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		sid, err := session.NewID()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		sess := &models.Session{
			ID:          sid,
			UserID:      id.UserID,
			Email:       id.Email,
			DisplayName: id.DisplayName,
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.ttl),
		}

		b, err := json.Marshal(sess)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		ok, err := s.rdb.SetNX(ctx, s.key(sid), b, s.ttl).Result()
		if err != nil {
			return nil, autherr.E(op, autherr.KindStorageFailure, err)
		}
		if ok {
			return sess, nil
		}
	}

	return nil, fmt.Errorf("%s: session id collision", op)
}

func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	const op = "session.redisstore.Get"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, wrap(op, err)
	}

	return sess, nil
}

func (s *Store) Validate(ctx context.Context, id string) (*models.Session, error) {
	const op = "session.redisstore.Validate"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, wrap(op, err)
	}

	if sess.Expired(s.now()) {
		if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
			return nil, autherr.E(op, autherr.KindStorageFailure, err)
		}

		return nil, autherr.E(op, autherr.KindExpired, nil)
	}

	return sess, nil
}

func (s *Store) Refresh(ctx context.Context, id string) (*models.Session, error) {
	const op = "session.redisstore.Refresh"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, wrap(op, err)
	}

	now := s.now().UTC()
	if sess.Expired(now) {
		return nil, autherr.E(op, autherr.KindExpired, nil)
	}

	if next := now.Add(s.ttl); next.After(sess.ExpiresAt) {
		sess.ExpiresAt = next
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.rdb.SetXX(ctx, s.key(id), b, sess.ExpiresAt.Sub(now)).Result()
	if err != nil {
		return nil, autherr.E(op, autherr.KindStorageFailure, err)
	}
	if !ok {
		// Сессию удалили между чтением и записью.
		return nil, autherr.E(op, autherr.KindNotFound, nil)
	}

	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "session.redisstore.Delete"

	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return autherr.E(op, autherr.KindStorageFailure, err)
	}

	return nil
}

// CleanupExpired — ключи истекают по TTL в самом Redis.
func (s *Store) CleanupExpired(context.Context) (int, error) {
	return 0, nil
}

func (s *Store) load(ctx context.Context, id string) (*models.Session, error) {
	b, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, autherr.ErrNotFound
		}

		return nil, autherr.E("", autherr.KindStorageFailure, err)
	}

	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, autherr.E("", autherr.KindStorageFailure, err)
	}

	return &sess, nil
}

func wrap(op string, err error) error {
	return autherr.E(op, autherr.KindOf(err), err)
}

var _ session.Store = (*Store)(nil)
