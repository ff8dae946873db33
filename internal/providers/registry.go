package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds LLM clients keyed by name. It supports config-driven
// instantiation, hot reload, and thread-safe access.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]LLMClient),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers an LLM client by name.
func (r *Registry) Register(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.logger.Info("registered LLM client", "name", name)
}

// Get returns an LLM client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Has checks if an LLM client is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// List returns all registered LLM client names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// LLMProviderConfig configures one provider with a resolved API key.
type LLMProviderConfig struct {
	Type      string  // "openrouter", "openai", "mock"
	Model     string  // Model name
	APIKey    string  // Resolved API key
	RateLimit float64 // Requests per second
	Enabled   bool
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

// Reload updates the registry based on new configuration. Providers
// that are no longer configured are unregistered; providers with
// changed settings are recreated.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled {
			continue
		}
		if provCfg.APIKey == "" && provCfg.Type != "mock" {
			continue
		}
		want[name] = true

		existing, hasExisting := r.clients[name]
		if hasExisting && !needsUpdate(existing, provCfg) {
			continue
		}
		client := createClient(provCfg)
		if client == nil {
			r.logger.Warn("unknown LLM provider type", "name", name, "type", provCfg.Type)
			continue
		}
		r.clients[name] = client
		if hasExisting {
			r.logger.Info("updated LLM client", "name", name, "type", provCfg.Type)
		} else {
			r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
		}
	}

	for name := range r.clients {
		if !want[name] {
			delete(r.clients, name)
			r.logger.Info("unregistered LLM client", "name", name)
		}
	}
}

// createClient creates an LLM client based on provider type.
func createClient(cfg LLMProviderConfig) LLMClient {
	switch cfg.Type {
	case "openrouter":
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			RPS:          cfg.RateLimit,
		})
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			RPS:          cfg.RateLimit,
		})
	case "mock":
		return NewMockClient()
	default:
		return nil
	}
}

// needsUpdate checks if a client must be recreated for new settings.
func needsUpdate(client LLMClient, cfg LLMProviderConfig) bool {
	switch c := client.(type) {
	case *OpenRouterClient:
		return c.apiKey != cfg.APIKey || c.defaultModel != cfg.Model
	case *OpenAIClient:
		return c.apiKey != cfg.APIKey || c.defaultModel != cfg.Model
	case *MockClient:
		return false
	default:
		return true
	}
}
