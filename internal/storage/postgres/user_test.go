package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-league-auth/internal/storage"
)

func TestIntegration_UserByEmail_CaseInsensitive_And_ByID(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	id := seedUser(t, st, "Coach@League.io", "Coach")

	u, err := st.UserByEmail(ctx, "coach@league.io")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "Coach", u.DisplayName)
	require.Equal(t, "hash", u.PasswordHash)

	byID, err := st.UserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
}

func TestIntegration_User_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "nobody@league.io")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
