package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Lelo88/inventory-app/internal/categories"
	"github.com/Lelo88/inventory-app/internal/config"
	"github.com/Lelo88/inventory-app/internal/db"
	"github.com/Lelo88/inventory-app/internal/health"
	"github.com/Lelo88/inventory-app/internal/home"
	"github.com/Lelo88/inventory-app/internal/httpx"
	"github.com/Lelo88/inventory-app/internal/items"
	"github.com/Lelo88/inventory-app/internal/observability"
	"github.com/Lelo88/inventory-app/internal/views"
)

// appPool es lo que la aplicación usa del pool (lo cumple *pgxpool.Pool).
type appPool interface {
	db.Querier
	Ping(ctx context.Context) error
	Close()
}

// appDeps permite reemplazar las dependencias externas en tests.
type appDeps struct {
	loadConfig func() (config.Config, error)
	newPool    func(ctx context.Context, url string) (appPool, error)
	serve      func(server *http.Server) error
	logOutput  io.Writer
}

func defaultDeps() appDeps {
	return appDeps{
		loadConfig: config.Load,
		newPool: func(ctx context.Context, url string) (appPool, error) {
			pool, err := db.NewPool(ctx, url)
			if err != nil {
				return nil, err
			}
			return pool, nil
		},
		serve: func(server *http.Server) error {
			return server.ListenAndServe()
		},
		logOutput: os.Stdout,
	}
}

var (
	runFn  = run
	exitFn = os.Exit
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runFn(ctx, defaultDeps()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFn(1)
	}
}

// run arma la aplicación y sirve hasta que ctx se cancela.
func run(ctx context.Context, deps appDeps) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(deps.logOutput, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if cfg.Telemetry {
		shutdownTelemetry, err := observability.Setup(deps.logOutput)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTelemetry(flushCtx); err != nil {
				logger.Error("telemetry shutdown failed", "error", err)
			}
		}()
		logger.Info("telemetry enabled")
	}

	pool, err := deps.newPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema ready")

	renderer, err := views.New(logger)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           buildRouter(cfg, logger, pool, renderer),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "address", server.Addr)
		serveErr <- deps.serve(server)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildRouter registra middlewares y rutas de toda la aplicación.
func buildRouter(cfg config.Config, logger *slog.Logger, pool appPool, renderer *views.Renderer) http.Handler {
	r := chi.NewRouter()

	// Middlewares base para trazabilidad y estabilidad.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(observability.ServerTiming(cfg.ServerTiming))

	// Errores de routing se manejan a nivel router.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderer.Error(w, r, http.StatusNotFound, "Page not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderer.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/static/*", views.Static())

	categoryRepository := categories.NewRepository(pool)
	itemRepository := items.NewRepository(pool)

	home.RegisterRoutes(r, home.NewHandler(categoryRepository, itemRepository, renderer))
	categories.RegisterRoutes(r, categories.NewHandler(categories.NewService(categoryRepository), renderer))
	items.RegisterRoutes(r, items.NewHandler(items.NewService(itemRepository, categoryRepository), renderer))

	healthHandler := health.New(pool)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	return r
}
