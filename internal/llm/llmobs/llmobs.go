package llmobs

import (
	"context"
	"strings"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging & tracing)
type observableCompleter struct {
	completer interfaces.Completer
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(completer interfaces.Completer) interfaces.Completer {
	return &observableCompleter{
		completer: completer,
	}
}

func (oc *observableCompleter) Name() string {
	return oc.completer.Name()
}

// Complete sends a prompt with observability
func (oc *observableCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Sending prompt to language model",
		"model", oc.completer.Name(),
		"prompt_chars", len(prompt),
	)

	start := time.Now()
	out, err := oc.completer.Complete(ctx, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Language model call failed", err,
			"model", oc.completer.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	if strings.TrimSpace(out) == "" {
		logger.WarnSkip(ctx, 1, "Language model returned an empty reply",
			"model", oc.completer.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return out, nil
	}

	logger.InfoSkip(ctx, 1, "Language model replied",
		"model", oc.completer.Name(),
		"reply_chars", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if logger.IsDebugEnabled() {
		logger.DebugSkip(ctx, 1, "Language model reply", "model", oc.completer.Name(), "reply", preview(out))
	}
	return out, nil
}

func preview(s string) string {
	const n = 200
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
