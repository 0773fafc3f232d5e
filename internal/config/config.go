package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"api-test-planner/internal/llm"
)

// Config holds the application configuration
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Reporting ReportingConfig `yaml:"reporting"`
	History   HistoryConfig   `yaml:"history"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	Provider           string  `yaml:"provider"`
	AllowExternalCalls bool    `yaml:"allow_external_calls"`
	OpenAIAPIKey       string  `yaml:"openai_api_key"`
	OpenRouterAPIKey   string  `yaml:"openrouter_api_key"`
	OpenRouterBaseURL  string  `yaml:"openrouter_base_url"`
	OllamaBaseURL      string  `yaml:"ollama_base_url"`
	VLLMBaseURL        string  `yaml:"vllm_base_url"`
	TGIBaseURL         string  `yaml:"tgi_base_url"`
	ParsingModel       string  `yaml:"parsing_model"`
	GenerationModel    string  `yaml:"generation_model"`
	ParsingTemp        float32 `yaml:"parsing_temperature"`
	GenerationTemp     float32 `yaml:"generation_temperature"`
	MaxRetries         int     `yaml:"max_retries"`
	RetryDelay         int     `yaml:"retry_delay"`    // seconds
	RefineTimeout      int     `yaml:"refine_timeout"` // seconds
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	OutputDir string `yaml:"output_dir"`
	Detailed  bool   `yaml:"detailed"`
}

// HistoryConfig holds the optional test-results database configuration
type HistoryConfig struct {
	Type     string `yaml:"type"` // postgres|mysql|sqlserver
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// LoadConfig loads configuration from the given YAML file. A missing
// file is not an error: the deterministic planner works with defaults.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override API keys from environment variables if set
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		config.LLM.OpenRouterAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAIAPIKey = key
	}

	// Set default values if not specified
	if config.LLM.Provider == "" {
		config.LLM.Provider = "openrouter"
	}
	if config.LLM.OpenRouterBaseURL == "" {
		config.LLM.OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	if config.LLM.OllamaBaseURL == "" {
		config.LLM.OllamaBaseURL = "http://localhost:11434"
	}
	if config.LLM.ParsingModel == "" {
		config.LLM.ParsingModel = "google/gemini-2.0-flash-001"
	}
	if config.LLM.GenerationModel == "" {
		config.LLM.GenerationModel = "deepseek/deepseek-chat-v3-0324:free"
	}
	if config.LLM.ParsingTemp == 0 {
		config.LLM.ParsingTemp = 0.3
	}
	if config.LLM.GenerationTemp == 0 {
		config.LLM.GenerationTemp = 0.4
	}
	if config.LLM.MaxRetries == 0 {
		config.LLM.MaxRetries = 3
	}
	if config.LLM.RetryDelay == 0 {
		config.LLM.RetryDelay = 1
	}
	if config.LLM.RefineTimeout == 0 {
		config.LLM.RefineTimeout = 5
	}
	if config.Reporting.OutputDir == "" {
		config.Reporting.OutputDir = filepath.Join("reports")
	}
	if config.History.Table == "" {
		config.History.Table = "test_results"
	}

	return &config, nil
}

// HasAPIKey reports whether a key for the configured cloud provider is set.
func (c *Config) HasAPIKey() bool {
	switch c.LLM.Provider {
	case "openai":
		return c.LLM.OpenAIAPIKey != ""
	case "openrouter":
		return c.LLM.OpenRouterAPIKey != ""
	default:
		// Local providers need no key.
		return true
	}
}

// LLMSettings converts the config into registry settings.
func (c *Config) LLMSettings() llm.Settings {
	return llm.Settings{
		Provider:           c.LLM.Provider,
		AllowExternalCalls: c.LLM.AllowExternalCalls,
		OpenAIAPIKey:       c.LLM.OpenAIAPIKey,
		OpenRouterAPIKey:   c.LLM.OpenRouterAPIKey,
		OpenRouterBaseURL:  c.LLM.OpenRouterBaseURL,
		OllamaBaseURL:      c.LLM.OllamaBaseURL,
		VLLMBaseURL:        c.LLM.VLLMBaseURL,
		TGIBaseURL:         c.LLM.TGIBaseURL,
		MaxRetries:         c.LLM.MaxRetries,
		RetryBaseDelay:     time.Duration(c.LLM.RetryDelay) * time.Second,
	}
}

// RefineTimeout returns the refinement deadline as a duration.
func (c *Config) RefineTimeout() time.Duration {
	return time.Duration(c.LLM.RefineTimeout) * time.Second
}
