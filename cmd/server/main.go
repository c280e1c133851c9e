package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tallysheet/internal/auth"
	"github.com/mmynk/tallysheet/internal/config"
	"github.com/mmynk/tallysheet/internal/metrics"
	"github.com/mmynk/tallysheet/internal/middleware"
	"github.com/mmynk/tallysheet/internal/service"
	"github.com/mmynk/tallysheet/internal/storage"
	"github.com/mmynk/tallysheet/internal/storage/remote"
	"github.com/mmynk/tallysheet/internal/storage/sqlite"
	"github.com/mmynk/tallysheet/pkg/logging"
	"github.com/mmynk/tallysheet/pkg/tallyrpc"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load(getEnv("TALLY_CONFIG", "./config.yaml"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("Storage initialized", "backend", cfg.Store.Backend)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authInterceptor := middleware.RequireAuth(jwtManager)
	if !cfg.Auth.Required {
		// Local deployments without accounts see everything.
		authInterceptor = middleware.OptionalAuth(jwtManager, auth.PermissionViewTallyLogs)
	}
	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(m), authInterceptor)

	mux := http.NewServeMux()

	// Register Connect services
	tallyPath, tallyHandler := tallyrpc.NewTallyServiceHandler(service.NewTallyService(store, cfg.Tally, m), interceptors)
	mux.Handle(tallyPath, tallyHandler)

	prefPath, prefHandler := tallyrpc.NewPreferenceServiceHandler(service.NewPreferenceService(store), interceptors)
	mux.Handle(prefPath, prefHandler)

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	staticDir, err := filepath.Abs(cfg.Server.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)
	mux.Handle("/", staticHandler(staticDir))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr), "auth_required", cfg.Auth.Required)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// openStore returns the configured backend and a function releasing it.
func openStore(cfg config.StoreConfig) (storage.TallyStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		client, err := remote.New(cfg.RemoteURL, cfg.RemoteToken, remote.WithTimeout(cfg.RemoteTimeout))
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
}

// staticHandler serves the entry screen and falls back to index.html.
func staticHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown Connect procedures must not get the SPA page.
		if strings.HasPrefix(r.URL.Path, "/tally.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, X-Request-Id, "+
			service.ErrorCodeKey+", "+service.EntriesCreatedKey)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
