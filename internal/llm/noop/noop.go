package noop

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
)

// Completer is a fallback used when no language model is configured. It returns a fixed reply.
type Completer struct {
	reply string
}

var _ interfaces.Completer = (*Completer)(nil)

// New returns a completer that always answers reply.
func New(reply string) *Completer {
	return &Completer{reply: reply}
}

func (c *Completer) Name() string { return "noop" }

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	logger.Debug(ctx, "Noop completer called", "prompt_chars", len(prompt))
	return c.reply, nil
}
