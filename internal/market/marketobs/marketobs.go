package marketobs

import (
	"context"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// observableProvider wraps a PriceHistoryProvider with logging and tracing
type observableProvider struct {
	provider interfaces.PriceHistoryProvider
}

var _ interfaces.PriceHistoryProvider = (*observableProvider)(nil)

// Wrap wraps a price provider with observability middleware
func Wrap(provider interfaces.PriceHistoryProvider) interfaces.PriceHistoryProvider {
	return &observableProvider{provider: provider}
}

func (op *observableProvider) Name() string {
	return op.provider.Name()
}

func (op *observableProvider) History(ctx context.Context, ticker string, from, to time.Time) ([]types.PricePoint, error) {
	ctx, span := trace.StartSpan(ctx, "market.History")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching price history",
		"provider", op.provider.Name(),
		"ticker", ticker,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
	)

	points, err := op.provider.History(ctx, ticker, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price history", err,
			"provider", op.provider.Name(),
			"ticker", ticker,
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Price history fetched",
		"provider", op.provider.Name(),
		"ticker", ticker,
		"bars", len(points),
	)
	return points, nil
}
