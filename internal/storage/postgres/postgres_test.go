package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-league-auth/internal/models"
)

// startPostgres поднимает временный PostgreSQL через testcontainers-go,
// применяет встроенные миграции goose и возвращает хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	require.Eventually(t, func() bool {
		return Migrate(ctx, dsn, "up") == nil
	}, 30*time.Second, 500*time.Millisecond, "migrations up")

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

// seedUser вставляет пользователя напрямую (регистрация вне сервиса).
func seedUser(t *testing.T, st *Storage, email, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := st.db.Exec(context.Background(),
		`INSERT INTO users(id, email, display_name, password_hash) VALUES ($1, $2, $3, $4)`,
		id, email, name, "hash")
	require.NoError(t, err)

	return id
}

func newRecord(userID uuid.UUID, hash string, created, expires time.Time) *models.RefreshTokenRecord {
	return &models.RefreshTokenRecord{
		ID:        uuid.New(),
		TokenHash: hash,
		UserID:    userID,
		CreatedAt: created,
		ExpiresAt: expires,
	}
}
