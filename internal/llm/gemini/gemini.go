// Package gemini calls Google Gemini through the genai SDK.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
)

const stage = "llm"

type Client struct {
	client      *genai.Client
	initErr     error
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
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

// New creates a Gemini completer. A missing key or client error is reported by every Complete call.
func New(ctx context.Context, p Params) *Client {
	c := &Client{
		model:       p.Model,
		maxTokens:   p.MaxTokens,
		temperature: p.Temperature,
		timeout:     p.Timeout,
	}
	if p.APIKey == "" {
		c.initErr = errors.New("GEMINI_API_KEY is not set")
		return c
	}

	cfg := &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		c.initErr = err
		return c
	}
	c.client = client
	return c
}

func (c *Client) Name() string { return "gemini:" + c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.initErr != nil {
		return "", apperr.Upstream(stage, c.Name(), c.initErr)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{}
	if c.temperature > 0 {
		config.Temperature = genai.Ptr(c.temperature)
	}
	if c.maxTokens > 0 {
		config.MaxOutputTokens = int32(c.maxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return "", apperr.FromTransport(stage, c.Name(), "", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", apperr.ModelInference(stage, c.Name(), errors.New("no candidates in response"))
	}
	return strings.TrimSpace(resp.Text()), nil
}
