package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := New(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	h := newHasher(t)
	hash, err := h.Hash("Abcdef1!")
	require.NoError(t, err)

	require.True(t, h.Verify("Abcdef1!", hash))
	require.False(t, h.Verify("abcdef1!", hash))
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	h := newHasher(t)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.True(t, h.Verify("same", a))
	require.True(t, h.Verify("same", b))
}

func TestVerify_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()

	h := newHasher(t)
	for _, bad := range []string{"", "not-a-hash", "$2a$04$short", strings.Repeat("x", 60)} {
		require.NotPanics(t, func() {
			require.False(t, h.Verify("whatever", bad))
		})
	}
}

func TestVerifyDummy_AlwaysFalse(t *testing.T) {
	t.Parallel()

	h := newHasher(t)
	require.False(t, h.VerifyDummy("league-auth-dummy-password"))
}

func TestNew_RejectsBadCost(t *testing.T) {
	t.Parallel()

	_, err := New(bcrypt.MinCost - 1)
	require.Error(t, err)
	_, err = New(bcrypt.MaxCost + 1)
	require.Error(t, err)
}
