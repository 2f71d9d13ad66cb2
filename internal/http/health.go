package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
)

// Pinger — зависимость, доступность которой входит в readiness (PostgreSQL).
type Pinger interface {
	Ping(ctx context.Context) error
}

// pingTimeout ограничивает проверку зависимости в /healthz.
const pingTimeout = 2 * time.Second

// Livez — liveness: процесс жив.
func Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Healthz — readiness: сервис поднят (ready) и зависимости отвечают.
func Healthz(ready *atomic.Bool, deps ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				log.From(ctx).Warn("readiness_ping_failed", slog.String("err", err.Error()))
				http.Error(w, "dependency unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
