package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-league-auth/internal/models"
	"github.com/pribylovaa/go-league-auth/internal/password"
	"github.com/pribylovaa/go-league-auth/internal/refresh"
	"github.com/pribylovaa/go-league-auth/internal/session"
	"github.com/pribylovaa/go-league-auth/internal/storage/storagetest"
	"github.com/pribylovaa/go-league-auth/internal/token"
	"github.com/pribylovaa/go-league-auth/internal/token/tokentest"
	"github.com/pribylovaa/go-league-auth/mocks"
)

type fixture struct {
	svc      *Service
	users    *mocks.MockUserStorage
	rt       *storagetest.RefreshTokens
	refresh  *refresh.Store
	sessions *session.Memory
	tokens   *token.Manager
	hasher   *password.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStorage(ctrl)

	hasher, err := password.New(bcrypt.MinCost)
	require.NoError(t, err)

	rt := storagetest.NewRefreshTokens()
	rs := refresh.New(rt, []byte(strings.Repeat("s", 32)))
	sessions := session.NewMemory()
	tokens := tokentest.NewManager(t)

	return &fixture{
		svc:      New(users, tokens, rs, sessions, hasher),
		users:    users,
		rt:       rt,
		refresh:  rs,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
	}
}

func (f *fixture) user(t *testing.T, email, pw string) *models.User {
	t.Helper()

	hash, err := f.hasher.Hash(pw)
	require.NoError(t, err)

	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  "Alice",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}
