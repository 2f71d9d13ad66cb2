package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/gate"
	"github.com/pribylovaa/go-league-auth/internal/http/cookie"
	apierrors "github.com/pribylovaa/go-league-auth/internal/http/errors"
	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
)

// RequireBearer пропускает запрос только с валидным access-токеном
// в Authorization и кладёт личность в контекст. Отказ — 401 с JSON-телом.
func RequireBearer(v gate.Verifier, m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, err := gate.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				reject(r, metrics.GateBearer, err, m)
				apierrors.WriteAuthError(w, r, err)
				return
			}

			identity, err := v.Verify(ctx, raw)
			if err != nil {
				reject(r, metrics.GateBearer, err, m)
				apierrors.WriteAuthError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(gate.WithIdentity(ctx, identity)))
		})
	}
}

// RequireSession пропускает запрос только с валидной cookie сессии, продлевает
// сессию, переиздаёт cookie с новым сроком и кладёт сессию (и личность)
// в контекст. Отказ — редирект 303 на loginPath; предъявленная невалидная
// cookie при этом сбрасывается.
func RequireSession(c *gate.Cookie, p cookie.Policy, loginPath string, m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			value := p.Read(r)

			s, err := c.VerifySession(ctx, value)
			if err != nil {
				reject(r, metrics.GateCookie, err, m)
				if value != "" {
					p.Clear(w)
				}
				http.Redirect(w, r, loginRedirect(loginPath, r), http.StatusSeeOther)
				return
			}

			// Срок cookie скользит вместе с серверной сессией.
			p.Issue(w, value)

			id := s.Identity()
			ctx = gate.WithSession(ctx, s)
			ctx = gate.WithIdentity(ctx, &id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loginRedirect добавляет исходный путь в next, чтобы после входа вернуться.
func loginRedirect(loginPath string, r *http.Request) string {
	if r.Method != http.MethodGet {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

func reject(r *http.Request, gateName string, err error, m *metrics.Metrics) {
	kind := autherr.KindOf(err)
	m.GateRejected(gateName, kind.String())

	lvl := slog.LevelInfo
	if kind == autherr.KindStorageFailure || kind == autherr.KindUnknown {
		lvl = slog.LevelError
	}

	log.From(r.Context()).LogAttrs(r.Context(), lvl, "auth_rejected",
		slog.String("gate", gateName),
		slog.String("kind", kind.String()),
		slog.String("path", r.URL.Path),
		slog.String("err", err.Error()),
	)
}
