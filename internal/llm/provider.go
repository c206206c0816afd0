// Package llm abstracts the external model providers used by the LLM
// classifier. Providers make exactly one outbound call per Complete
// invocation; retry policy, if any, belongs to callers.
package llm

import (
	"context"

	"github.com/chemvet/chemvet/internal/model"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a single prompt and returns the raw text response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible.
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one completion call.
type CompletionRequest struct {
	// System is the system instruction (may be empty).
	System string

	// Prompt is the user prompt.
	Prompt string

	// Model overrides the configured model when set.
	Model string

	// MaxTokens limits the response length (0 uses the configured default).
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0.
	Temperature float64
}

// CompletionResponse contains the provider's raw output.
type CompletionResponse struct {
	// Text is the raw response text.
	Text string

	// Model is the model that generated the response.
	Model string

	// TokensUsed tracks token consumption where the provider reports it.
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30,
		MaxTokens:   300,
		Temperature: 0.3,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(cfg model.LLMConfig) Config {
	out := DefaultConfig()
	out.Provider = cfg.Provider
	out.Model = cfg.Model
	out.APIKey = cfg.APIKey
	out.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		out.Timeout = cfg.Timeout
	}
	if cfg.MaxTokens > 0 {
		out.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		out.Temperature = cfg.Temperature
	}
	return out
}
