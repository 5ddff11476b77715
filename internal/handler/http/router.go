package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig carries the transport settings and collaborators of the API.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	JWTService     jwt.Service
	RateLimiter    *middleware.RateLimiter
	MetricsHandler http.Handler

	AuthHandler    AuthHandler
	WorklogHandler WorklogHandler
	ReportHandler  ReportHandler
	AdminHandler   AdminHandler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelDebug,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	ja := cfg.JWTService.JWTAuth()

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", cfg.AuthHandler.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", cfg.AuthHandler.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", cfg.AuthHandler.LoginWithGoogle)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Verifier(ja, jwt.AccessTokenCookieName))
				r.Use(middleware.AuthRequired(cfg.JWTService, jwt.AccessTokenCookieName))
				r.Get("/me", cfg.AuthHandler.Me)
			})
		})

		// Requires a user session
		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.Verifier(ja, jwt.AccessTokenCookieName))
			r.Use(middleware.AuthRequired(cfg.JWTService, jwt.AccessTokenCookieName))

			r.Get("/employee", cfg.WorklogHandler.GetProfile)
			r.Patch("/employee", cfg.WorklogHandler.UpdateProfile)
			r.Get("/punch/status", cfg.WorklogHandler.GetPunchStatus)

			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Middleware)
				}
				r.Post("/punch", cfg.WorklogHandler.Punch)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/verify-admin", cfg.AdminHandler.VerifyAdmin)
			r.Post("/logout", cfg.AdminHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Verifier(ja, jwt.AdminTokenCookieName))
				r.Use(middleware.AuthRequired(cfg.JWTService, jwt.AdminTokenCookieName))
				r.Use(middleware.AdminOnly)
				r.Get("/session", cfg.AdminHandler.Session)
			})
		})

		// Admin only
		r.Route("/worklogs", func(r chi.Router) {
			r.Use(middleware.Verifier(ja, jwt.AdminTokenCookieName))
			r.Use(middleware.AuthRequired(cfg.JWTService, jwt.AdminTokenCookieName))
			r.Use(middleware.AdminOnly)

			r.Get("/daily", cfg.ReportHandler.GetDailyReport)
			r.Get("/daily/export", cfg.ReportHandler.ExportDailyReport)
		})
	})
	return r
}
