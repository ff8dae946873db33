package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/config"
	"github.com/jackzampolin/primer/internal/llmcall"
	"github.com/jackzampolin/primer/internal/providers"
	"github.com/jackzampolin/primer/internal/server/endpoints"
	"github.com/jackzampolin/primer/internal/session"
	"github.com/jackzampolin/primer/internal/svcctx"
)

// Server is the main Primer HTTP server. All document state is held in
// memory; restarting the server drops every session.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	sessions   *session.Store
	recorder   *llmcall.Recorder
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8090)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	// If config manager provided, set up providers and hot reload
	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		registry:  registry,
		sessions:  session.NewStore(),
		recorder:  llmcall.NewRecorder(llmcall.DefaultCapacity),
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	s.services = &svcctx.Services{
		Registry:      s.registry,
		ConfigManager: s.configMgr,
		Sessions:      s.sessions,
		Recorder:      s.recorder,
		Logger:        s.logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, nil)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: s.withServices(mux),
		// No WriteTimeout: section reads legitimately block on LLM calls.
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Sessions returns the document session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Handler returns the served handler, with services attached. Useful
// for tests that drive the API without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), s.services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
