// Package ollama talks to a local Ollama server over its REST API.
package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
)

const (
	stage           = "llm"
	defaultEndpoint = "http://localhost:11434"
)

type Client struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ interfaces.Completer = (*Client)(nil)

type Params struct {
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func New(p Params) *Client {
	if p.Endpoint == "" {
		p.Endpoint = defaultEndpoint
	}
	return &Client{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(p.Endpoint, "/")),
			api.WithTimeout(p.Timeout),
			api.WithLogging(true),
		),
		model:       p.Model,
		maxTokens:   p.MaxTokens,
		temperature: p.Temperature,
	}
}

func (c *Client) Name() string { return "ollama:" + c.model }

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Complete runs a single non-streaming generation.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{Model: c.model, Prompt: prompt}
	opts := map[string]any{}
	if c.maxTokens > 0 {
		opts["num_predict"] = c.maxTokens
	}
	if c.temperature > 0 {
		opts["temperature"] = c.temperature
	}
	if len(opts) > 0 {
		req.Options = opts
	}

	resp, err := c.client.POST(ctx, "/api/generate", req)
	if err != nil {
		return "", apperr.FromTransport(stage, c.Name(), "", err)
	}

	var out generateResponse
	if err := resp.ParseJSON(&out); err != nil {
		return "", apperr.ModelInference(stage, c.Name(), err)
	}
	if out.Error != "" {
		return "", apperr.ModelInference(stage, c.Name(), errors.New(out.Error))
	}
	return strings.TrimSpace(out.Response), nil
}
