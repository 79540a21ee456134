package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (types.RecommendationResult, error)
}

type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]types.SymbolMatch, error)
}

// Recorder persists completed analyses.
type Recorder interface {
	Record(ctx context.Context, res types.RecommendationResult) error
	Close() error
}
