package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-league-auth/internal/cache"
	"github.com/pribylovaa/go-league-auth/internal/config"
	"github.com/pribylovaa/go-league-auth/internal/gate"
	httpapi "github.com/pribylovaa/go-league-auth/internal/http"
	"github.com/pribylovaa/go-league-auth/internal/http/cookie"
	"github.com/pribylovaa/go-league-auth/internal/http/handlers"
	"github.com/pribylovaa/go-league-auth/internal/janitor"
	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/password"
	"github.com/pribylovaa/go-league-auth/internal/refresh"
	"github.com/pribylovaa/go-league-auth/internal/service"
	"github.com/pribylovaa/go-league-auth/internal/session"
	"github.com/pribylovaa/go-league-auth/internal/session/redisstore"
	"github.com/pribylovaa/go-league-auth/internal/signer"
	"github.com/pribylovaa/go-league-auth/internal/storage/postgres"
	"github.com/pribylovaa/go-league-auth/internal/token"
	grpcserver "github.com/pribylovaa/go-league-auth/internal/transport/grpc"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	secret, err := signer.ResolveSecret(cfg.Env, cfg.Auth.SessionSecret, log)
	if err != nil {
		return err
	}
	sg, err := signer.New(secret)
	if err != nil {
		return err
	}

	// Ключи читаются один раз: битая пара — отказ старта.
	tokens, err := token.New(token.Config{
		PrivateKeyPath: cfg.Auth.PrivateKeyPath,
		PublicKeyPath:  cfg.Auth.PublicKeyPath,
		Issuer:         cfg.Auth.Issuer,
		AccessTTL:      cfg.Auth.AccessTokenTTL,
		RefreshTTL:     cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	hasher, err := password.New(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		return err
	}
	defer str.Close()
	log.Info("postgres_connected")

	var rdb *redis.Client
	if cfg.Redis.RedisURL != "" {
		redisCtx, redisCancel := context.WithTimeout(rootCtx, 5*time.Second)
		rdb, err = cache.Connect(redisCtx, cfg.Redis.RedisURL)
		redisCancel()
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("redis_connected")
	}

	refreshOpts := []refresh.Option{}
	if rdb != nil {
		refreshOpts = append(refreshOpts,
			refresh.WithCache(cache.NewWithClient(rdb, cfg.Redis.RefreshPrefix), cfg.Auth.RefreshTokenTTL))
	}
	refreshStore := refresh.New(str, secret, refreshOpts...)

	sessions := buildSessions(cfg, rdb)
	log.Info("session_store_ready", slog.String("backend", cfg.Session.Backend))

	m := metrics.New(prometheus.DefaultRegisterer)

	srvc := service.New(str, tokens, refreshStore, sessions, hasher, service.WithMetrics(m))
	log.Info("service_initialized")

	bearer := gate.NewBearer(tokens)
	policy := cookie.Policy{
		Name:   cfg.Auth.CookieName,
		TTL:    cfg.Auth.SessionTTL,
		Secure: cfg.Env == config.EnvProd,
	}

	router := httpapi.NewRouter(handlers.New(srvc, sg, policy, cfg.Auth.LoginPath), httpapi.Options{
		Logger:         log,
		Timeout:        cfg.Timeouts.Service,
		Metrics:        m,
		Bearer:         bearer,
		Cookie:         gate.NewCookie(sg, sessions),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", httpapi.Livez)
	mux.Handle("/healthz", httpapi.Healthz(&ready, str))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
		close(httpErrCh)
	}()

	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcSrv := grpcserver.New(grpcserver.Options{
		Logger:     log,
		Verifier:   bearer,
		Metrics:    m,
		Timeout:    cfg.Timeouts.Service,
		Reflection: cfg.Env == config.EnvLocal || cfg.Env == config.EnvDev,
	})

	listener, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		_ = httpSrv.Shutdown(context.Background())
		return fmt.Errorf("grpc listen %s: %w", cfg.GRPC.Addr(), err)
	}

	// Фоновая очистка просроченных сессий и refresh-токенов.
	janitorDone := janitor.New(cfg.Session.CleanupInterval, log, m,
		janitor.Sessions(sessions),
		janitor.RefreshTokens(refreshStore),
	).Start(rootCtx)

	grpcErrCh := make(chan error, 1)
	go func() {
		grpcErrCh <- grpcSrv.Serve(listener)
		close(grpcErrCh)
	}()

	ready.Store(true)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	var serveErr error
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-grpcErrCh:
		log.Error("grpc_serve_failed", slog.Any("err", serveErr))
	case serveErr = <-httpErrCh:
		log.Error("http_serve_failed", slog.Any("err", serveErr))
	}

	ready.Store(false)
	rootCancel()

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	grpcSrv.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}
	<-janitorDone

	return serveErr
}

// buildSessions выбирает хранилище сессий по session.backend.
func buildSessions(cfg *config.Config, rdb *redis.Client) session.Store {
	if cfg.Session.Backend == config.SessionBackendRedis && rdb != nil {
		return redisstore.New(rdb,
			redisstore.WithTTL(cfg.Auth.SessionTTL),
			redisstore.WithPrefix(cfg.Session.KeyPrefix),
		)
	}

	return session.NewMemory(session.WithTTL(cfg.Auth.SessionTTL))
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
