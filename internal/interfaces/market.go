package interfaces

import (
	"context"
	"time"

	"stock-advisor/internal/types"
)

// PriceHistoryProvider returns daily bars in ascending date order.
type PriceHistoryProvider interface {
	History(ctx context.Context, ticker string, from, to time.Time) ([]types.PricePoint, error)
	Name() string
}

type PricePredictor interface {
	Predict(ctx context.Context, ticker string, basis []types.PricePoint) (types.PredictionResult, error)
}

type QuoteSource interface {
	Equity(ctx context.Context, ticker string) (types.EquityQuote, error)
}
