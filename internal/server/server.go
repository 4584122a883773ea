// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the configured store, wraps it
// with the per-call timeout, and hands it to the services, which are handed
// to the handlers. Nothing below this package knows which store is in use.
package server

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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/exercise-tracker/internal/handler"
	"github.com/sakif/exercise-tracker/internal/middleware"
	"github.com/sakif/exercise-tracker/internal/repository"
	"github.com/sakif/exercise-tracker/internal/repository/mongodb"
	sqliteRepo "github.com/sakif/exercise-tracker/internal/repository/sqlite"
	"github.com/sakif/exercise-tracker/internal/service"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config holds server configuration.
type Config struct {
	Port int

	Store         string // StoreSQLite or StoreMongo
	DBPath        string
	MongoURI      string
	MongoDatabase string
	StoreTimeout  time.Duration // per store call; 0 means repository.DefaultTimeout

	CORSOrigins []string
	RateLimit   int // requests per minute per client IP; 0 disables
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  repository.UserStore
}

// New opens the configured store and builds a Server on top of it.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	s, err := NewWithStore(cfg, logger, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds a Server around an already opened store. The store is
// wrapped so every call is bounded by cfg.StoreTimeout.
func NewWithStore(cfg Config, logger *slog.Logger, store repository.UserStore) (*Server, error) {
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = repository.DefaultTimeout
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  repository.WithTimeout(store, timeout),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func openStore(cfg Config) (repository.UserStore, error) {
	switch cfg.Store {
	case StoreSQLite, "":
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil

	case StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Handler returns the root HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /                          → Index page (HTML forms)
// GET    /healthz                   → Liveness probe
// GET    /metrics                   → Prometheus metrics
// POST   /api/exercise/new-user     → Create user
// GET    /api/exercise/users        → List users
// POST   /api/exercise/add          → Append activity
// GET    /api/exercise/log          → Query a user's log
//
// Middleware runs in the order it is added. The rate limiter only guards
// /api so health checks and scrapes are never throttled.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	indexHandler, err := handler.NewIndexHandler(s.logger)
	if err != nil {
		return fmt.Errorf("creating index handler: %w", err)
	}
	s.router.Get("/", indexHandler.HandleIndex)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", promhttp.Handler())

	exerciseHandler := handler.NewExerciseHandler(
		service.NewUserService(s.store, s.logger),
		service.NewActivityService(s.store, s.logger),
		service.NewLogService(s.store, s.logger),
		s.logger,
	)

	s.router.Route("/api/exercise", func(r chi.Router) {
		if s.config.RateLimit > 0 {
			r.Use(httprate.Limit(
				s.config.RateLimit,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "text/plain; charset=utf-8")
					w.WriteHeader(http.StatusTooManyRequests)
					w.Write([]byte("Too many requests, please try again later"))
				}),
			))
		}

		r.Post("/new-user", exerciseHandler.HandleCreateUser)
		r.Get("/users", exerciseHandler.HandleListUsers)
		r.Post("/add", exerciseHandler.HandleAddExercise)
		r.Get("/log", exerciseHandler.HandleLog)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// On SIGINT or SIGTERM the server stops accepting connections, gives
// in-flight requests 30 seconds to finish, then closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store", s.storeName()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) storeName() string {
	if s.config.Store == StoreMongo {
		return StoreMongo + " " + s.config.MongoDatabase
	}
	return StoreSQLite + " " + s.config.DBPath
}
