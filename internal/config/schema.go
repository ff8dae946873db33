package config

// Config holds primer configuration.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai", "mock"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default pipeline settings.
type DefaultsCfg struct {
	LLMProvider string  `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider
	Mode        string  `mapstructure:"mode" yaml:"mode"`                 // "story" or "study"
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:      "openrouter",
				Model:     "anthropic/claude-3.5-sonnet",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 2.0,
				Enabled:   true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
			Mode:        "study",
			Temperature: 0.4,
			MaxTokens:   4096,
		},
		Server: ServerCfg{
			Port: "8090",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
