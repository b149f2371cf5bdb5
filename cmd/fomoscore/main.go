package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/SL177Y-0/fomoscore/internal/config"
	dbRedis "github.com/SL177Y-0/fomoscore/internal/db/redis"
	logpkg "github.com/SL177Y-0/fomoscore/internal/logger"
	"github.com/SL177Y-0/fomoscore/internal/metrics"
	"github.com/SL177Y-0/fomoscore/internal/repository/session"
	chiTransport "github.com/SL177Y-0/fomoscore/internal/transport/chi"
	"github.com/SL177Y-0/fomoscore/internal/transport/verida"
	activityuc "github.com/SL177Y-0/fomoscore/internal/usecase/activity"
	credentialuc "github.com/SL177Y-0/fomoscore/internal/usecase/credential"
	healthuc "github.com/SL177Y-0/fomoscore/internal/usecase/health"
	scoreuc "github.com/SL177Y-0/fomoscore/internal/usecase/score"
	"github.com/SL177Y-0/fomoscore/internal/version"
)

func main() {
	// .env is optional; real deployments set variables in the environment
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting fomoscore API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("vault_base_url", cfg.Vault.BaseURL),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Session store not ready", zap.Error(err))
	}
	logger.Info("Connected to session store")

	// Register vault metrics explicitly (no init())
	metrics.RegisterVaultMetrics()

	vaultClient := verida.NewClient(&verida.Config{
		BaseURL:           cfg.Vault.BaseURL,
		TimeoutSec:        cfg.Vault.TimeoutSec,
		SourceApplication: cfg.Vault.SourceApplication,
		ProbePaths:        cfg.Vault.ProbePaths,
		Logger:            logger,
	})

	sessions := session.New(store, cfg.Session.KeyPrefix, time.Duration(cfg.Session.TTLHours)*time.Hour)

	resolver := credentialuc.New(vaultClient, logger)
	fetcher := activityuc.New(vaultClient, cfg.Vault.SearchTerm, logger).
		WithPagination(cfg.Vault.PageSize, cfg.Vault.MaxPages)
	scores := scoreuc.New(resolver, fetcher, cfg.Scoring.Keywords, cfg.Scoring.MessagesOnly, logger)
	health := healthuc.New(store, vaultClient)

	server := chiTransport.NewServer(scores, resolver, sessions, health, chiTransport.AuthURLConfig{
		BaseURL:     cfg.Auth.AuthBaseURL,
		AppDID:      cfg.Auth.AppDID,
		RedirectURL: cfg.Auth.RedirectURL,
		Scopes:      cfg.Auth.Scopes,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
