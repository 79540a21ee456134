// Package narrative produces the human-readable parts of an analysis: a news summary
// and an explanation of the recommendation.
package narrative

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const (
	NoNews                 = "No significant news found."
	SummaryUnavailable     = "Summary not available."
	ExplanationUnavailable = "Explanation not available."

	// explanationNewsChars caps how much raw news text the explanation prompt may cite.
	explanationNewsChars = 400
)

const summaryTemplate = `Summarize the following latest news about %s into 2-3 key points. Be concise and objective.

News:
%s`

const explanationTemplate = `You are a stock analyst assistant.
Task: Explain in 3-5 sentences max why the recommendation for %[1]s is "%[2]s".
Only use:
- Price trend (last close: %.2[3]f, predicted close: %.2[4]f)
- Trend score: %.1[5]f
- Sentiment score: %[6]d
- Final score: %.1[7]f
- Key news (summarized below)
News: %[8]s
Rules:
- Do NOT mention unrelated companies or crypto.
- Do NOT invent extra details. Be factual and concise. Use simple language.
- Explain it in bullet points. Stay focused on %[1]s.`

type Generator struct {
	llm interfaces.Completer
	md  goldmark.Markdown
}

var _ interfaces.NarrativeGenerator = (*Generator)(nil)

func New(llm interfaces.Completer) *Generator {
	return &Generator{
		llm: llm,
		md:  goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
	}
}

// Summarize condenses news into a few key points. No news yields NoNews without a model call.
func (g *Generator) Summarize(ctx context.Context, ticker string, news []types.NewsItem) (string, error) {
	lines := make([]string, 0, len(news))
	for _, it := range news {
		if it.Title == "" || it.Snippet == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", it.Title, it.Snippet))
	}
	if len(lines) == 0 {
		return NoNews, nil
	}

	out, err := g.llm.Complete(ctx, fmt.Sprintf(summaryTemplate, ticker, strings.Join(lines, "\n")))
	if err != nil {
		return "", apperr.WithStage(err, "summary")
	}
	if strings.TrimSpace(out) == "" {
		return SummaryUnavailable, nil
	}
	return strings.TrimSpace(out), nil
}

// Explain justifies a computed recommendation in plain language.
func (g *Generator) Explain(ctx context.Context, in types.ExplanationInput) (string, error) {
	prompt := fmt.Sprintf(explanationTemplate,
		in.Ticker, in.Label,
		in.LastClose, in.PredictedClose,
		in.PriceScore, in.SentimentScore, in.FinalScore,
		clip(in.NewsText, explanationNewsChars),
	)

	out, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return "", apperr.WithStage(err, "explanation")
	}
	if strings.TrimSpace(out) == "" {
		return ExplanationUnavailable, nil
	}
	return strings.TrimSpace(out), nil
}

// HTML renders model markdown for display. Raw HTML in the input is not passed through.
func (g *Generator) HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// clip returns at most n runes of s.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
