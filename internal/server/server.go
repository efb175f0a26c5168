// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carterperez-dev/stackrec/internal/config"
	"github.com/carterperez-dev/stackrec/internal/health"
)

type Config struct {
	ServerConfig  config.ServerConfig
	Metrics       config.MetricsConfig
	HealthHandler *health.Handler
	Logger        *slog.Logger
	// DrainDelay keeps serving after readiness flips so load balancers
	// stop routing before connections close.
	DrainDelay time.Duration
}

type Server struct {
	httpServer *http.Server
	router      *chi.Mux
	health      *health.Handler
	logger      *slog.Logger
	metricsPath string
	drainDelay  time.Duration
	shutdownTO  time.Duration
}

// New builds the router with probes and metrics mounted ahead of any
// middleware the caller adds, so they bypass rate limiting.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	s := &Server{
		router:     router,
		health:     cfg.HealthHandler,
		logger:     logger,
		drainDelay: cfg.DrainDelay,
		shutdownTO: cfg.ServerConfig.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              cfg.ServerConfig.Address(),
			Handler:           router,
			ReadTimeout:       cfg.ServerConfig.ReadTimeout,
			ReadHeaderTimeout: cfg.ServerConfig.ReadTimeout,
			WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			IdleTimeout:       cfg.ServerConfig.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.metricsPath = path
	}

	return s
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// Mount registers probe and metrics routes. Call it after the global
// middleware chain is in place.
func (s *Server) Mount() {
	if s.health != nil {
		s.health.RegisterRoutes(s.router)
	}
	if s.metricsPath != "" {
		s.router.Handle(s.metricsPath, promhttp.Handler())
	}
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return http.ErrServerClosed
}

// Shutdown flips readiness, waits out the drain delay, then closes
// listeners and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.health != nil {
		s.health.SetShutdown(true)
	}

	if s.drainDelay > 0 {
		s.logger.Info("draining connections", "delay", s.drainDelay)
		select {
		case <-time.After(s.drainDelay):
		case <-ctx.Done():
		}
	}

	if s.shutdownTO > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTO)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
