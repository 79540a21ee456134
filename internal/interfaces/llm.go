package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// Completer sends a single prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

type SentimentScorer interface {
	Score(ctx context.Context, ticker string, news []types.NewsItem) (types.SentimentResult, error)
}

type NarrativeGenerator interface {
	Summarize(ctx context.Context, ticker string, news []types.NewsItem) (string, error)
	Explain(ctx context.Context, in types.ExplanationInput) (string, error)
}

// MarkdownRenderer turns model markdown into display HTML.
type MarkdownRenderer interface {
	HTML(markdown string) (string, error)
}
