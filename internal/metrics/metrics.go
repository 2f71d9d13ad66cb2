// metrics — счётчики Prometheus сервиса аутентификации.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Значения меток.
const (
	GateBearer = "bearer"
	GateCookie = "cookie"
	GateGRPC   = "grpc"

	FlowAPI     = "api"
	FlowSession = "session"

	ResultOK    = "ok"
	ResultError = "error"

	TargetSessions      = "sessions"
	TargetRefreshTokens = "refresh_tokens"
)

// Metrics — набор счётчиков. Нулевой указатель допустим: все методы становятся no-op.
type Metrics struct {
	gateRejections   *prometheus.CounterVec
	logins           *prometheus.CounterVec
	refreshRotations *prometheus.CounterVec
	janitorRuns      *prometheus.CounterVec
	janitorRemoved   *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
// reg == nil — только создание без регистрации (удобно в тестах).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_gate_rejections_total",
			Help: "Requests rejected by an authentication gate.",
		}, []string{"gate", "kind"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by flow and result.",
		}, []string{"flow", "result"}),
		refreshRotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refresh_rotations_total",
			Help: "Refresh token rotations by result.",
		}, []string{"result"}),
		janitorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_janitor_runs_total",
			Help: "Janitor cleanup runs by target and result.",
		}, []string{"target", "result"}),
		janitorRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_janitor_removed_total",
			Help: "Expired entries removed by the janitor.",
		}, []string{"target"}),
	}

	if reg != nil {
		reg.MustRegister(m.gateRejections, m.logins, m.refreshRotations, m.janitorRuns, m.janitorRemoved)
	}

	return m
}

// GateRejected учитывает отказ гейта с видом ошибки kind.
func (m *Metrics) GateRejected(gate, kind string) {
	if m == nil {
		return
	}
	m.gateRejections.WithLabelValues(gate, kind).Inc()
}

func (m *Metrics) Login(flow string, err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(flow, result(err)).Inc()
}

func (m *Metrics) RefreshRotation(err error) {
	if m == nil {
		return
	}
	m.refreshRotations.WithLabelValues(result(err)).Inc()
}

// JanitorRun учитывает прогон очистки; removed прибавляется только при успехе.
func (m *Metrics) JanitorRun(target string, removed int64, err error) {
	if m == nil {
		return
	}
	m.janitorRuns.WithLabelValues(target, result(err)).Inc()
	if err == nil && removed > 0 {
		m.janitorRemoved.WithLabelValues(target).Add(float64(removed))
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
