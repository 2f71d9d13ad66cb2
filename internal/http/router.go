package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/pribylovaa/go-league-auth/internal/gate"
	"github.com/pribylovaa/go-league-auth/internal/http/handlers"
	"github.com/pribylovaa/go-league-auth/internal/http/middleware"
	"github.com/pribylovaa/go-league-auth/internal/metrics"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Metrics *metrics.Metrics

	// Bearer проверяет access-токены на /api; Cookie — сессии интерактивных страниц.
	Bearer gate.Verifier
	Cookie *gate.Cookie

	// AllowedOrigins — CORS для /api; пустой список отключает кросс-доменные запросы.
	AllowedOrigins []string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
//
//	GET  /login, POST /login, POST /logout  — интерактивный вход/выход;
//	GET  /, GET /session                    — за cookie-гейтом;
//	POST /api/auth/{login,refresh,logout}   — пары токенов;
//	GET  /api/me                            — за bearer-гейтом.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Timeout(opts.Timeout),
	)

	registerInteractive(root, h, opts)

	api := chi.NewRouter()
	api.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         600,
	}).Handler)
	registerAPI(api, h, opts)
	root.Mount("/api", api)

	return root
}

func registerInteractive(r chi.Router, h *handlers.Handlers, opts Options) {
	r.Get(h.LoginPath, h.LoginPage)
	r.Post(h.LoginPath, h.LoginForm)
	r.Post("/logout", h.LogoutForm)

	requireSession := middleware.RequireSession(opts.Cookie, h.Cookie, h.LoginPath, opts.Metrics)
	r.Method(http.MethodGet, "/", middleware.Chain(http.HandlerFunc(h.Session), requireSession))
	r.Method(http.MethodGet, "/session", middleware.Chain(http.HandlerFunc(h.Session), requireSession))
}

func registerAPI(r chi.Router, h *handlers.Handlers, opts Options) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/logout", h.Logout)

	r.Method(http.MethodGet, "/me", middleware.Chain(http.HandlerFunc(h.Me),
		middleware.RequireBearer(opts.Bearer, opts.Metrics),
	))
}
