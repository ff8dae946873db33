package providers

import (
	"sort"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		reg := NewRegistry()
		mock := NewMockClient()
		reg.Register("mock", mock)

		client, err := reg.Get("mock")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if client != LLMClient(mock) {
			t.Error("Get returned a different client")
		}
		if !reg.Has("mock") {
			t.Error("Has(mock) = false")
		}
		if _, err := reg.Get("missing"); err == nil {
			t.Error("Get(missing) should error")
		}
	})

	t.Run("reload from config", func(t *testing.T) {
		reg := NewRegistry()
		reg.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openrouter": {Type: "openrouter", Model: "m1", APIKey: "k1", RateLimit: 2, Enabled: true},
				"disabled":   {Type: "openrouter", Model: "m2", APIKey: "k2", Enabled: false},
				"nokey":      {Type: "openai", Model: "m3", Enabled: true},
				"mock":       {Type: "mock", Enabled: true},
			},
		})

		names := reg.List()
		sort.Strings(names)
		want := []string{"mock", "openrouter"}
		if len(names) != len(want) {
			t.Fatalf("List = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Fatalf("List = %v, want %v", names, want)
			}
		}
	})

	t.Run("reload removes unconfigured", func(t *testing.T) {
		reg := NewRegistry()
		reg.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"a": {Type: "mock", Enabled: true},
				"b": {Type: "mock", Enabled: true},
			},
		})
		reg.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"a": {Type: "mock", Enabled: true},
			},
		})
		if reg.Has("b") {
			t.Error("b should be unregistered after reload")
		}
		if !reg.Has("a") {
			t.Error("a should survive reload")
		}
	})

	t.Run("reload recreates on changed settings", func(t *testing.T) {
		reg := NewRegistry()
		cfg := RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"or": {Type: "openrouter", Model: "m1", APIKey: "k1", Enabled: true},
			},
		}
		reg.Reload(cfg)
		before, _ := reg.Get("or")

		// Same settings: client instance is kept.
		reg.Reload(cfg)
		same, _ := reg.Get("or")
		if before != same {
			t.Error("unchanged config should keep the client instance")
		}

		// New model: client is recreated.
		cfg.LLMProviders["or"] = LLMProviderConfig{Type: "openrouter", Model: "m2", APIKey: "k1", Enabled: true}
		reg.Reload(cfg)
		after, _ := reg.Get("or")
		if before == after {
			t.Error("changed model should recreate the client")
		}
	})

	t.Run("unknown provider type skipped", func(t *testing.T) {
		reg := NewRegistry()
		reg.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"weird": {Type: "carrier-pigeon", APIKey: "k", Enabled: true},
			},
		})
		if reg.Has("weird") {
			t.Error("unknown type should not be registered")
		}
	})
}
