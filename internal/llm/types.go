package llm

import "context"

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message in OpenAI format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the capability the planner core needs from an LLM
// collaborator: one bounded chat completion call. Both the schema
// refinement pass and the prose requirements parser accept a nil
// Completer and degrade to deterministic behavior.
type Completer interface {
	Chat(ctx context.Context, messages []Message, model string, temperature float32, maxTokens int) (string, error)
}

// Provider executes a single chat completion against one backend,
// without retry or circuit breaking. Adapter wraps a Provider with both.
type Provider interface {
	Name() string
	// IsLocal reports whether the provider makes no external network
	// calls (air-gapped safe).
	IsLocal() bool
	Chat(ctx context.Context, messages []Message, model string, temperature float32, maxTokens int) (string, error)
	IsAvailable() bool
	ListModels() []string
}

// ModelCapability describes what a model supports.
type ModelCapability struct {
	MaxTokens               int      `json:"max_tokens"`
	ContextWindow           int      `json:"context_window"`
	SupportsJSONMode        bool     `json:"supports_json_mode"`
	SupportsStreaming       bool     `json:"supports_streaming"`
	SupportsFunctionCalling bool     `json:"supports_function_calling"`
	CostPer1KInput          *float64 `json:"cost_per_1k_input,omitempty"`  // nil = free / local
	CostPer1KOutput         *float64 `json:"cost_per_1k_output,omitempty"`
	RecommendedFor          []string `json:"recommended_for,omitempty"`
}

// DefaultCapability returns conservative defaults for unknown models.
func DefaultCapability() ModelCapability {
	return ModelCapability{
		MaxTokens:      4096,
		ContextWindow:  8192,
		RecommendedFor: []string{"both"},
	}
}

// modelCapabilities holds known limits for the curated model set.
var modelCapabilities = map[string]ModelCapability{
	"google/gemini-2.0-flash-001": {
		MaxTokens: 8192, ContextWindow: 1000000,
		SupportsJSONMode: true, SupportsStreaming: true, SupportsFunctionCalling: true,
		RecommendedFor: []string{"parsing"},
	},
	"deepseek/deepseek-chat-v3-0324:free": {
		MaxTokens: 8192, ContextWindow: 64000,
		SupportsJSONMode: true, SupportsStreaming: true,
		RecommendedFor: []string{"generation"},
	},
	"meta-llama/llama-3.3-70b-instruct:free": {
		MaxTokens: 4096, ContextWindow: 131072,
		SupportsStreaming: true,
		RecommendedFor:    []string{"generation"},
	},
	"qwen/qwen-2.5-coder-32b-instruct:free": {
		MaxTokens: 4096, ContextWindow: 32768,
		SupportsStreaming: true,
		RecommendedFor:    []string{"generation"},
	},
	"gpt-4o-mini": {
		MaxTokens: 16384, ContextWindow: 128000,
		SupportsJSONMode: true, SupportsStreaming: true, SupportsFunctionCalling: true,
		RecommendedFor: []string{"both"},
	},
	"gpt-4o": {
		MaxTokens: 16384, ContextWindow: 128000,
		SupportsJSONMode: true, SupportsStreaming: true, SupportsFunctionCalling: true,
		RecommendedFor: []string{"both"},
	},
}

// CapabilityFor returns the known capability for a model, falling back
// to conservative defaults.
func CapabilityFor(model string) ModelCapability {
	if c, ok := modelCapabilities[model]; ok {
		return c
	}
	return DefaultCapability()
}
