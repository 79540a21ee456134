package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/store"
)

func TestNewSelectsProvider(t *testing.T) {
	cases := map[string]string{
		"OLLAMA": "ollama:m",
		"GEMINI": "gemini:m",
		"CLAUDE": "claude:m",
		"OPENAI": "openai:m",
		"NOOP":   "noop",
	}
	for provider, want := range cases {
		c, err := New(context.Background(), store.LLMConfig{Provider: provider, Model: "m"}, store.Secrets{}, time.Second, "50")
		require.NoError(t, err, provider)
		assert.Equal(t, want, c.Name())
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), store.LLMConfig{Provider: "MYSTERY"}, store.Secrets{}, time.Second, "")
	assert.Error(t, err)
}

func TestNoopReply(t *testing.T) {
	c, err := New(context.Background(), store.LLMConfig{Provider: "NOOP"}, store.Secrets{}, 0, "50")
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "50", out)
}
