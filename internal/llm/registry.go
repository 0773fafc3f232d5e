package llm

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"api-test-planner/internal/logger"
)

// Settings carries everything the registry needs to construct providers.
// The caller builds it from its configuration and passes it in; there is
// no global settings state.
type Settings struct {
	Provider           string // default provider name
	AllowExternalCalls bool

	OpenAIAPIKey      string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OllamaBaseURL     string
	VLLMBaseURL       string
	TGIBaseURL        string

	MaxRetries     int
	RetryBaseDelay time.Duration
}

// ProviderStatus describes one registered provider for display.
type ProviderStatus struct {
	Name             string   `json:"name"`
	IsLocal          bool     `json:"is_local"`
	Available        bool     `json:"available"`
	BlockedByPrivacy bool     `json:"blocked_by_privacy"`
	Models           []string `json:"models"`
}

// Registry resolves provider names to configured adapters. Adapters are
// cached so circuit breaker state survives across calls.
type Registry struct {
	settings Settings
	log      *logger.Logger

	mu       sync.Mutex
	adapters map[string]*Adapter
}

// NewRegistry creates a registry for the given settings.
func NewRegistry(settings Settings, log *logger.Logger) *Registry {
	return &Registry{
		settings: settings,
		log:      log,
		adapters: make(map[string]*Adapter),
	}
}

// providerNames lists every provider key the registry knows.
var providerNames = []string{"openai", "openrouter", "ollama", "vllm", "tgi"}

func (r *Registry) buildProvider(name string) (Provider, error) {
	s := r.settings
	switch name {
	case "openai":
		return NewOpenAIProvider(s.OpenAIAPIKey), nil
	case "openrouter":
		return NewOpenRouterProvider(s.OpenRouterAPIKey, s.OpenRouterBaseURL), nil
	case "ollama":
		return NewOllamaProvider(s.OllamaBaseURL), nil
	case "vllm":
		if s.VLLMBaseURL == "" {
			return nil, fmt.Errorf("vllm base URL not configured: %w", ErrProviderUnavailable)
		}
		return NewVLLMProvider(s.VLLMBaseURL), nil
	case "tgi":
		if s.TGIBaseURL == "" {
			return nil, fmt.Errorf("tgi base URL not configured: %w", ErrProviderUnavailable)
		}
		return NewTGIProvider(s.TGIBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown provider '%s': %w", name, ErrProviderUnavailable)
	}
}

// Adapter returns a configured adapter for the provider, enforcing the
// external-calls policy. An empty name resolves to the default provider.
func (r *Registry) Adapter(name string) (*Adapter, error) {
	if name == "" {
		name = r.settings.Provider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}

	provider, err := r.buildProvider(name)
	if err != nil {
		return nil, err
	}

	if !r.settings.AllowExternalCalls && !provider.IsLocal() {
		return nil, fmt.Errorf("provider '%s' makes external API calls: %w", name, ErrPrivacyViolation)
	}

	retry := DefaultRetryConfig()
	if r.settings.MaxRetries > 0 {
		retry.MaxRetries = r.settings.MaxRetries
	}
	if r.settings.RetryBaseDelay > 0 {
		retry.BaseDelay = r.settings.RetryBaseDelay
	}

	adapter := NewAdapter(provider, retry, r.log)
	r.adapters[name] = adapter
	return adapter, nil
}

// Providers returns the status of every registered provider, sorted by name.
func (r *Registry) Providers() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(providerNames))
	for _, name := range providerNames {
		provider, err := r.buildProvider(name)
		if err != nil {
			statuses = append(statuses, ProviderStatus{Name: name})
			continue
		}
		blocked := !r.settings.AllowExternalCalls && !provider.IsLocal()
		status := ProviderStatus{
			Name:             name,
			IsLocal:          provider.IsLocal(),
			BlockedByPrivacy: blocked,
		}
		if !blocked {
			status.Available = provider.IsAvailable()
			status.Models = provider.ListModels()
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
