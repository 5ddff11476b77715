package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/config"
	domainNotification "github.com/cmlabs-hris/worklog-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/worklog-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/worklog-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worklog-backend-go/internal/metrics"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository"
	serviceAuth "github.com/cmlabs-hris/worklog-backend-go/internal/service/auth"
	notificationService "github.com/cmlabs-hris/worklog-backend-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/worklog-backend-go/internal/service/report"
	worklogService "github.com/cmlabs-hris/worklog-backend-go/internal/service/worklog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.SetupDefault(logger.Options{
		Level:   cfg.App.LogLevel,
		App:     "worklog-api",
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	if cfg.App.SeedOnBoot {
		demo, created, err := fixtures.SeedDemo(ctx, repos.Employees, time.Now())
		if err != nil {
			slog.Error("Failed to seed demo employee", "error", err)
		} else if created {
			slog.Info("Inserted demo employee", "employee_id", demo.ID)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	var notifier domainNotification.Notifier
	if cfg.SMTP.Host != "" {
		emailService, err := email.NewEmailService(cfg.SMTP)
		if err != nil {
			slog.Error("Failed to initialize email service", "error", err)
			os.Exit(1)
		}
		notifier, err = notificationService.NewEmailNotifier(emailService, cfg.Notify.Timezone)
		if err != nil {
			slog.Error("Failed to initialize notifier", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("SMTP_HOST not set, punch notifications disabled")
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.CookieSecure)
	var GoogleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		GoogleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	authService := serviceAuth.NewAuthService(repos.Users, JWTService, cfg.Admin.Password)
	worklogSvc := worklogService.NewWorklogService(repos.Employees, notifier, collector)
	reportSvc := reportService.NewReportService(repos.Employees, collector)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PunchPerMinute)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         log,
		AllowedOrigins: cfg.App.AllowedOrigins,
		JWTService:     JWTService,
		RateLimiter:    rateLimiter,
		MetricsHandler: metrics.Handler(registry),
		AuthHandler:    appHTTP.NewAuthHandler(JWTService, authService, GoogleService, cfg.App.FrontendURL, cfg.JWT.CookieSecure),
		WorklogHandler: appHTTP.NewWorklogHandler(worklogSvc),
		ReportHandler:  appHTTP.NewReportHandler(reportSvc),
		AdminHandler:   appHTTP.NewAdminHandler(JWTService, authService),
	})

	scheduler := cron.NewScheduler()
	cron.RegisterWorklogJobs(scheduler, worklogSvc, cfg.Metrics.RefreshInterval)
	cron.RegisterAuthJobs(scheduler, JWTService, cron.RevokedTokenPruneInterval)
	scheduler.Start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "driver", repos.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	scheduler.Stop()
	worklogSvc.Wait()
	rateLimiter.Stop()
	if err := repos.Close(shutdownCtx); err != nil {
		slog.Error("Failed to close storage", "error", err)
	}
}
