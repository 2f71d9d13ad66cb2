package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssue_Attributes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	Policy{Name: "session_id", TTL: 7 * 24 * time.Hour, Secure: true}.Issue(w, "abc.sig")

	res := w.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	require.Equal(t, "session_id", c.Name)
	require.Equal(t, "abc.sig", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Equal(t, 604800, c.MaxAge)
}

func TestIssue_NotSecureOutsideProd(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	Policy{Name: "sid", TTL: time.Hour}.Issue(w, "v")

	require.NotContains(t, w.Header().Get("Set-Cookie"), "Secure")
}

func TestClearAndRead(t *testing.T) {
	t.Parallel()

	p := Policy{Name: "sid", TTL: time.Hour}

	w := httptest.NewRecorder()
	p.Clear(w)
	require.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, p.Read(r))
	r.AddCookie(&http.Cookie{Name: "sid", Value: "x.y"})
	require.Equal(t, "x.y", p.Read(r))
}
