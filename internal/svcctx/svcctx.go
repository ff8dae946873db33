// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/primer/internal/config"
	"github.com/jackzampolin/primer/internal/llmcall"
	"github.com/jackzampolin/primer/internal/providers"
	"github.com/jackzampolin/primer/internal/session"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry      *providers.Registry
	ConfigManager *config.Manager
	Sessions      *session.Store
	Recorder      *llmcall.Recorder
	Logger        *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// SessionsFrom extracts the document session store from context.
func SessionsFrom(ctx context.Context) *session.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Sessions
	}
	return nil
}

// RecorderFrom extracts the LLM call recorder from context.
func RecorderFrom(ctx context.Context) *llmcall.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Recorder
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
