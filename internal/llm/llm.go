// Package llm builds the configured language-model client.
package llm

import (
	"context"
	"fmt"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/llm/claude"
	"stock-advisor/internal/llm/gemini"
	"stock-advisor/internal/llm/noop"
	"stock-advisor/internal/llm/ollama"
	"stock-advisor/internal/llm/openai"
	"stock-advisor/internal/store"
)

// New returns a Completer for cfg. noopReply is what the NOOP provider answers.
func New(ctx context.Context, cfg store.LLMConfig, secrets store.Secrets, timeout time.Duration, noopReply string) (interfaces.Completer, error) {
	switch cfg.Provider {
	case "OLLAMA":
		return ollama.New(ollama.Params{
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		}), nil
	case "GEMINI":
		return gemini.New(ctx, gemini.Params{
			APIKey:      secrets.GeminiAPIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.Endpoint,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		}), nil
	case "CLAUDE":
		return claude.New(claude.Params{
			APIKey:      secrets.AnthropicAPIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.Endpoint,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		}), nil
	case "OPENAI":
		return openai.New(openai.Params{
			APIKey:      secrets.OpenAIAPIKey,
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		}), nil
	case "NOOP":
		return noop.New(noopReply), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
