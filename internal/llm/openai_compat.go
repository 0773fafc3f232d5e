package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// openAICompatProvider serves every backend that speaks the OpenAI chat
// completions API: OpenAI itself, OpenRouter, and self-hosted vLLM/TGI
// servers. The base URL decides which one.
type openAICompatProvider struct {
	name    string
	baseURL string
	apiKey  string
	local   bool
	models  []string
}

// NewOpenAIProvider creates a provider for api.openai.com.
func NewOpenAIProvider(apiKey string) Provider {
	return &openAICompatProvider{
		name:   "openai",
		apiKey: apiKey,
		models: []string{"gpt-4o-mini", "gpt-4o"},
	}
}

// NewOpenRouterProvider creates a provider for the OpenRouter gateway.
func NewOpenRouterProvider(apiKey, baseURL string) Provider {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &openAICompatProvider{
		name:    "openrouter",
		baseURL: baseURL,
		apiKey:  apiKey,
		models: []string{
			"google/gemini-2.0-flash-001",
			"deepseek/deepseek-chat-v3-0324:free",
			"meta-llama/llama-3.3-70b-instruct:free",
			"qwen/qwen-2.5-coder-32b-instruct:free",
			"anthropic/claude-3.5-sonnet",
			"openai/gpt-4o-mini",
		},
	}
}

// NewVLLMProvider creates a provider for a self-hosted vLLM server.
func NewVLLMProvider(baseURL string) Provider {
	return &openAICompatProvider{
		name:    "vllm",
		baseURL: strings.TrimSuffix(baseURL, "/") + "/v1",
		apiKey:  "not-needed",
		local:   true,
	}
}

// NewTGIProvider creates a provider for a Text Generation Inference server.
func NewTGIProvider(baseURL string) Provider {
	return &openAICompatProvider{
		name:    "tgi",
		baseURL: strings.TrimSuffix(baseURL, "/") + "/v1",
		apiKey:  "not-needed",
		local:   true,
	}
}

func (p *openAICompatProvider) Name() string  { return p.name }
func (p *openAICompatProvider) IsLocal() bool { return p.local }

func (p *openAICompatProvider) client() *openai.Client {
	cfg := openai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Chat executes a single chat completion.
func (p *openAICompatProvider) Chat(ctx context.Context, messages []Message, model string, temperature float32, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := p.client().CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.name)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// IsAvailable reports whether the provider is configured. Local compat
// servers only need a base URL; cloud providers need an API key.
func (p *openAICompatProvider) IsAvailable() bool {
	if p.local {
		return p.baseURL != ""
	}
	return p.apiKey != ""
}

// ListModels returns commonly used models for this backend.
func (p *openAICompatProvider) ListModels() []string {
	return p.models
}
