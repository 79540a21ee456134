// Package sentiment rates recent news for a ticker on a 0 to 100 scale using a language model.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const (
	stage = "sentiment"
	// Neutral is the score used when there is no news to rate.
	Neutral = 50
)

const promptTemplate = `You are a financial analyst.
Based on the following news, rate the sentiment for the stock %s on a scale of 0-100,
where 0 = Strong Sell, 50 = Hold, 100 = Strong Buy.

Only output the number.

News: %s`

var (
	numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	loneNumber    = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	// scalePattern matches echoes of the rating scale such as "0-100", "0 to 100" or "/100".
	scalePattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:-|to)\s*\d+(?:\.\d+)?|/\s*\d+(?:\.\d+)?`)
)

type Scorer struct {
	llm interfaces.Completer
}

var _ interfaces.SentimentScorer = (*Scorer)(nil)

func New(llm interfaces.Completer) *Scorer {
	return &Scorer{llm: llm}
}

// Score asks the model for a rating. Empty news scores Neutral without a model call.
func (s *Scorer) Score(ctx context.Context, ticker string, news []types.NewsItem) (types.SentimentResult, error) {
	text := strings.TrimSpace(types.NewsText(news))
	if text == "" {
		return types.SentimentResult{Score: Neutral}, nil
	}

	reply, err := s.llm.Complete(ctx, fmt.Sprintf(promptTemplate, ticker, text))
	if err != nil {
		return types.SentimentResult{}, apperr.WithStage(err, stage)
	}

	score, err := Parse(reply)
	if err != nil {
		return types.SentimentResult{}, apperr.ModelInference(stage, s.llm.Name(), err)
	}
	return types.SentimentResult{Score: score, Raw: reply}, nil
}

// Parse extracts the score from reply, clamps it into [0,100] and rounds it.
// The last line holding only a number wins; otherwise the first number outside
// any echoed scale ("0-100", "/100") is used.
func Parse(reply string) (int, error) {
	m := lastLoneNumber(reply)
	if m == "" {
		m = numberPattern.FindString(scalePattern.ReplaceAllString(reply, " "))
	}
	if m == "" {
		return 0, fmt.Errorf("no score in reply %q", truncate(reply, 80))
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("bad score %q: %w", m, err)
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), nil
}

func lastLoneNumber(reply string) string {
	lines := strings.Split(reply, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); loneNumber.MatchString(l) {
			return l
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
