package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/godeye/godeye-go/internal/config"
	"github.com/godeye/godeye-go/internal/handler"
	"github.com/godeye/godeye-go/internal/middleware"
	"github.com/godeye/godeye-go/internal/repository"
	"github.com/godeye/godeye-go/internal/service"
	"github.com/godeye/godeye-go/internal/telemetry"
	"github.com/godeye/godeye-go/internal/upstream"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup("godeye-api")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.EnsureSchema(db); err != nil {
		slog.Warn("schema setup failed", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.DefaultMaxSearches)
	quotaService := service.NewQuotaService(userRepo)
	adminService := service.NewAdminService(userRepo)

	userHandler := handler.NewUserHandler(authService, quotaService)
	adminHandler := handler.NewAdminHandler(adminService)
	osintHandler := handler.NewOSINTHandler(upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey), quotaService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/register", userHandler.HandleRegister)
		r.Post("/login", userHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/profile", userHandler.HandleProfile)
		r.Get("/quota", userHandler.HandleQuota)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Use(middleware.AdminOnly(userRepo))
		r.Put("/admin/role/{userID}", adminHandler.HandleUpdateRole)
		r.Put("/admin/quota/{userID}", adminHandler.HandleUpdateQuota)
		r.Post("/admin/reset/{userID}", adminHandler.HandleResetQuota)
	})

	r.Route("/osint", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(10, 20))
		osintHandler.Routes(r, middleware.QuotaGuard(quotaService))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "godeye-api"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
