package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/go-league-auth/internal/http/errors"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
)

// Timeout ограничивает бюджет запроса сроком d: итоговый deadline —
// меньший из входящего и now+d. Вызовы хранилищ наследуют его.
// Если бюджет истёк, а обработчик ничего не записал, клиент получает
// 504 deadline_exceeded в общем JSON-конверте. d<=0 — no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status != 0 || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}

			log.From(ctx).Warn("request_timeout",
				slog.String("path", r.URL.Path),
				slog.Duration("budget", d),
			)
			apierrors.WriteError(w, r, ctx.Err())
		})
	}
}
