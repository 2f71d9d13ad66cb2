// janitor периодически вычищает просроченные сессии и refresh-записи.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/refresh"
	"github.com/pribylovaa/go-league-auth/internal/session"
)

// Target — одна задача очистки. Sweep возвращает число удалённых записей.
type Target struct {
	Name  string
	Sweep func(ctx context.Context) (int64, error)
}

// Sessions — очистка хранилища сессий.
func Sessions(s session.Store) Target {
	return Target{
		Name: metrics.TargetSessions,
		Sweep: func(ctx context.Context) (int64, error) {
			n, err := s.CleanupExpired(ctx)
			return int64(n), err
		},
	}
}

// RefreshTokens — удаление просроченных refresh-записей.
func RefreshTokens(r *refresh.Store) Target {
	return Target{Name: metrics.TargetRefreshTokens, Sweep: r.DeleteExpired}
}

type Janitor struct {
	period  time.Duration
	targets []Target
	log     *slog.Logger
	metrics *metrics.Metrics
}

func New(period time.Duration, log *slog.Logger, m *metrics.Metrics, targets ...Target) *Janitor {
	if log == nil {
		log = slog.Default()
	}

	return &Janitor{period: period, targets: targets, log: log, metrics: m}
}

// RunOnce выполняет все задачи по разу. Ошибка одной задачи не мешает остальным.
func (j *Janitor) RunOnce(ctx context.Context) {
	for _, t := range j.targets {
		removed, err := t.Sweep(ctx)
		j.metrics.JanitorRun(t.Name, removed, err)

		if err != nil {
			j.log.Error("janitor_failed",
				slog.String("target", t.Name),
				slog.String("err", err.Error()),
			)
			continue
		}

		if removed > 0 {
			j.log.Debug("janitor_swept",
				slog.String("target", t.Name),
				slog.Int64("removed", removed),
			)
		}
	}
}

// Start запускает фоновый цикл по тикеру. period<=0 — no-op.
// Возвращённый канал закрывается после выхода горутины (отмена ctx).
func (j *Janitor) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if j.period <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		t := time.NewTicker(j.period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				j.RunOnce(ctx)
			}
		}
	}()

	return done
}
