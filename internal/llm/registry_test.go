package llm

import (
	"errors"
	"testing"
)

func TestRegistryPrivacyEnforcement(t *testing.T) {
	registry := NewRegistry(Settings{
		Provider:           "openrouter",
		AllowExternalCalls: false,
		OpenRouterAPIKey:   "key",
	}, nil)

	_, err := registry.Adapter("")
	if !errors.Is(err, ErrPrivacyViolation) {
		t.Errorf("external provider with external calls disabled: error = %v, want ErrPrivacyViolation", err)
	}

	// Local providers are always allowed.
	if _, err := registry.Adapter("ollama"); err != nil {
		t.Errorf("local provider blocked: %v", err)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(Settings{AllowExternalCalls: true}, nil)

	_, err := registry.Adapter("gemini")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
}

func TestRegistryCachesAdapters(t *testing.T) {
	registry := NewRegistry(Settings{Provider: "ollama"}, nil)

	a, err := registry.Adapter("ollama")
	if err != nil {
		t.Fatalf("Adapter() error = %v", err)
	}
	b, err := registry.Adapter("ollama")
	if err != nil {
		t.Fatalf("Adapter() error = %v", err)
	}
	if a != b {
		t.Error("adapter was rebuilt instead of cached")
	}
}

func TestRegistryUnconfiguredLocalBackends(t *testing.T) {
	registry := NewRegistry(Settings{}, nil)

	for _, name := range []string{"vllm", "tgi"} {
		if _, err := registry.Adapter(name); !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("%s without base URL: error = %v, want ErrProviderUnavailable", name, err)
		}
	}
}

func TestRegistryProvidersSorted(t *testing.T) {
	registry := NewRegistry(Settings{AllowExternalCalls: false}, nil)

	statuses := registry.Providers()
	if len(statuses) != 5 {
		t.Fatalf("got %d providers, want 5", len(statuses))
	}
	for i := 1; i < len(statuses); i++ {
		if statuses[i-1].Name >= statuses[i].Name {
			t.Fatalf("providers not sorted: %s before %s", statuses[i-1].Name, statuses[i].Name)
		}
	}

	for _, status := range statuses {
		if status.Name == "openai" && !status.BlockedByPrivacy {
			t.Error("openai should be blocked when external calls are disabled")
		}
		if status.Name == "ollama" && status.BlockedByPrivacy {
			t.Error("ollama should never be blocked by privacy")
		}
	}
}
