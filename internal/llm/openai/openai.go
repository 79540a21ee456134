// Package openai calls any OpenAI-compatible chat completions endpoint.
package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
)

const stage = "llm"

type Client struct {
	client      *goopenai.Client
	apiKey      string
	endpoint    string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

var _ interfaces.Completer = (*Client)(nil)

type Params struct {
	APIKey string
	// Endpoint overrides the API root, e.g. http://localhost:8000/v1 for a self-hosted server.
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func New(p Params) *Client {
	cfg := goopenai.DefaultConfig(p.APIKey)
	if p.Endpoint != "" {
		cfg.BaseURL = strings.TrimRight(p.Endpoint, "/")
	}
	return &Client{
		client:      goopenai.NewClientWithConfig(cfg),
		apiKey:      p.APIKey,
		endpoint:    p.Endpoint,
		model:       p.Model,
		maxTokens:   p.MaxTokens,
		temperature: p.Temperature,
		timeout:     p.Timeout,
	}
}

func (c *Client) Name() string { return "openai:" + c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	// self-hosted endpoints often run without a key
	if c.apiKey == "" && c.endpoint == "" {
		return "", apperr.Upstream(stage, c.Name(), errors.New("OPENAI_API_KEY is not set"))
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", apperr.FromTransport(stage, c.Name(), "", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.ModelInference(stage, c.Name(), errors.New("no choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
