// Package claude calls Anthropic Claude through the official SDK.
package claude

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
)

const (
	stage            = "llm"
	defaultMaxTokens = 512
)

type Client struct {
	client      anthropic.Client
	apiKey      string
	model       string
	maxTokens   int
	temperature float32
}

var _ interfaces.Completer = (*Client)(nil)

type Params struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func New(p Params) *Client {
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(p.APIKey),
		// one attempt per call; the caller decides whether to re-issue
		option.WithMaxRetries(0),
	}
	if p.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.Timeout))
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	return &Client{
		client:      anthropic.NewClient(opts...),
		apiKey:      p.APIKey,
		model:       p.Model,
		maxTokens:   p.MaxTokens,
		temperature: p.Temperature,
	}
}

func (c *Client) Name() string { return "claude:" + c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", apperr.Upstream(stage, c.Name(), errors.New("ANTHROPIC_API_KEY is not set"))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", apperr.FromTransport(stage, c.Name(), "", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
