// transport/grpc собирает gRPC-сервер сервиса: цепочку интерсепторов
// (recover, логирование, таймаут, bearer-гейт, метрики), health и reflection.
// Bearer-гейт стоит и в unary-, и в stream-цепочке.
//
// Собственных RPC у сервиса нет: внешние сервисы лиги регистрируют свои
// реализации через Server.Register и получают личность вызывающего
// из gate.IdentityFrom(ctx).
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/go-league-auth/internal/gate"
	"github.com/pribylovaa/go-league-auth/internal/interceptors"
	"github.com/pribylovaa/go-league-auth/internal/metrics"
)

// Options — зависимости и настройки сервера.
type Options struct {
	Logger   *slog.Logger
	Verifier gate.Verifier
	Metrics  *metrics.Metrics
	// Timeout — дедлайн по умолчанию для unary-вызовов (0 — без дедлайна).
	Timeout time.Duration
	// Reflection включает gRPC reflection (local/dev).
	Reflection bool
	// PublicMethods — полные имена методов, доступных без токена.
	PublicMethods []string
}

// Server — gRPC-сервер с health-сервисом.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// New создаёт сервер. Health и (опционально) reflection регистрируются сразу,
// прикладные сервисы — через Register до вызова Serve.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(log),
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.WithTimeout(opts.Timeout),
			interceptors.UnaryAuth(opts.Verifier, opts.Metrics, opts.PublicMethods...),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamAuth(opts.Verifier, opts.Metrics, opts.PublicMethods...),
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	return &Server{srv: srv, health: hs, log: log}
}

// Register даёт доступ к *grpc.Server для регистрации сервисов.
func (s *Server) Register(fn func(*grpc.Server)) {
	fn(s.srv)
}

// Serve инициализирует метрики по зарегистрированным сервисам, переводит
// health в SERVING и блокируется до остановки. Штатная остановка даёт nil.
func (s *Server) Serve(lis net.Listener) error {
	grpc_prometheus.Register(s.srv)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	s.log.Info("grpc_listen_start", slog.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

// Stop переводит health в NOT_SERVING и выполняет GracefulStop;
// по истечении ctx соединения рвутся принудительно.
func (s *Server) Stop(ctx context.Context) {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("grpc_stopped")
	case <-ctx.Done():
		s.log.Warn("grpc_force_stop")
		s.srv.Stop()
	}
}
