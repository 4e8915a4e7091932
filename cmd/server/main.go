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
	_ "time/tzdata"

	"contactdesk/internal/config"
	"contactdesk/internal/domain/admin"
	"contactdesk/internal/domain/inquiry"
	"contactdesk/internal/domain/notification"
	"contactdesk/internal/infra/email"
	"contactdesk/internal/infra/ratelimit"
	"contactdesk/internal/infra/session"
	"contactdesk/internal/infra/store"
	"contactdesk/internal/infra/template"
	"contactdesk/internal/middleware"
	"contactdesk/internal/router"
)

// dataStore is the persistence backend for both inquiries and admin users.
type dataStore interface {
	inquiry.Store
	admin.UserStore
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode, "timezone", cfg.Server.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	db, deliveryLogs, closeStore, err := newDataStore(cfg)
	if err != nil {
		slog.Error("failed to initialize store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("store initialized", "driver", cfg.Store.Driver)

	// Templates: built-in defaults, overridden per field by templates.<type>.<field>
	tmplEngine, err := template.NewEngine(cfg)
	if err != nil {
		slog.Error("failed to initialize template engine", "error", err)
		os.Exit(1)
	}

	transport, err := newTransport(cfg)
	if err != nil {
		slog.Error("failed to initialize email transport", "provider", cfg.Email.Provider, "error", err)
		os.Exit(1)
	}
	slog.Info("email transport initialized", "provider", transport.Name())

	dispatcher := notification.NewDispatcher(tmplEngine, transport, notification.DispatcherConfig{
		From:        cfg.Email.FromAddress,
		SendTimeout: cfg.SendTimeout(),
	})
	notificationService := notification.NewService(dispatcher, deliveryLogs)

	// Per-submitter limit (optional, needs Redis)
	var recipientLimiter inquiry.RecipientRateLimiter
	if cfg.RecipientRateLimit.MaxPerHour > 0 {
		limiter := ratelimit.NewRedisRecipientLimiter(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.RecipientRateLimit.MaxPerHour,
		)
		defer limiter.Close()
		recipientLimiter = limiter
		slog.Info("recipient rate limiter initialized", "max_per_hour", cfg.RecipientRateLimit.MaxPerHour)
	}

	sessions, closeSessions := newSessionStore(ctx, cfg)
	defer closeSessions()

	// Services
	inquiryService := inquiry.NewService(db, notificationService, recipientLimiter, cfg, cfg.Location())
	adminService := admin.NewService(db, sessions, cfg.SessionTTL())

	if cfg.Admin.BootstrapPassword != "" {
		if err := adminService.EnsureUser(ctx, cfg.Admin.BootstrapUsername, cfg.Admin.BootstrapPassword); err != nil {
			slog.Error("failed to create bootstrap admin user", "error", err)
			os.Exit(1)
		}
	}

	// Handlers
	if err := inquiry.RegisterValidators(); err != nil {
		slog.Error("failed to register validators", "error", err)
		os.Exit(1)
	}
	inquiryHandler := inquiry.NewHandler(inquiryService)
	notificationHandler := notification.NewHandler(notificationService)
	adminHandler := admin.NewHandler(adminService, admin.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}, cfg.Admin.AllowRegistration)

	// Router
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go pruneVisitors(ctx, rateLimiter)

	r := router.New(cfg, rateLimiter, adminService, inquiryHandler, adminHandler, notificationHandler)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.SendTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// newDataStore opens the configured backend. The returned func releases it on shutdown.
func newDataStore(cfg *config.Config) (dataStore, notification.LogStore, func(), error) {
	switch cfg.Store.Driver {
	case "supabase":
		s, err := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s.DeliveryLogs(), func() {}, nil
	case "sqlite", "":
		s, err := store.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := s.Close(); err != nil {
				slog.Error("failed to close sqlite store", "error", err)
			}
		}
		return s, s.DeliveryLogs(), closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

func newTransport(cfg *config.Config) (notification.Transport, error) {
	switch cfg.Email.Provider {
	case "resend":
		if cfg.Email.APIKey == "" {
			return nil, errors.New("email.api_key is required for the resend provider")
		}
		return email.NewResendProvider(cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName), nil
	case "smtp", "":
		return email.NewSMTPProvider(email.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			SSL:         cfg.SMTP.SSL,
			AuthType:    cfg.SMTP.AuthType,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			Timeout:     cfg.SendTimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}

// newSessionStore returns the configured session store and a function releasing it.
// The in-memory store gets a sweeper bound to ctx.
func newSessionStore(ctx context.Context, cfg *config.Config) (admin.SessionStore, func()) {
	if cfg.Session.Driver == "redis" {
		rs := session.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		slog.Info("redis session store initialized", "redis", cfg.Redis.Address)
		return rs, func() { _ = rs.Close() }
	}

	ms := session.NewMemoryStore()
	go admin.NewSweeper(ms, cfg.SweepInterval()).Run(ctx)
	slog.Info("memory session store initialized", "sweep_interval", cfg.SweepInterval())
	return ms, func() {}
}

// pruneVisitors drops idle per-IP limiter state every few minutes.
func pruneVisitors(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(10 * time.Minute); n > 0 {
				slog.Debug("rate limiter pruned idle clients", "count", n)
			}
		}
	}
}
