package analysisobs

import (
	"context"
	"time"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type observableAnalyzer struct {
	analyzer interfaces.Analyzer
}

var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

func Wrap(a interfaces.Analyzer) interfaces.Analyzer {
	return &observableAnalyzer{analyzer: a}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, ticker string) (types.RecommendationResult, error) {
	ctx, span := trace.StartSpan(ctx, "analysis.Analyze")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Starting analysis", "ticker", ticker)

	res, err := oa.analyzer.Analyze(ctx, ticker)
	if err != nil {
		fields := []any{"ticker", ticker, "duration_ms", time.Since(start).Milliseconds()}
		if e, ok := apperr.As(err); ok {
			fields = append(fields, "kind", string(e.Kind), "stage", e.Stage)
		}
		// client errors log at WARN
		switch apperr.KindOf(err) {
		case apperr.KindInvalidTicker, apperr.KindInvalidInput:
			logger.WarnSkip(ctx, 1, "Analysis rejected", append(fields, "error", err)...)
		default:
			logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err, fields...)
		}
		return types.RecommendationResult{}, err
	}

	logger.InfoSkip(ctx, 1, "Analysis completed",
		"ticker", res.Ticker,
		"label", res.Label,
		"final_score", res.FinalScore,
		"news_count", res.NewsCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
