package newsobs

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type observableNews struct {
	provider interfaces.NewsProvider
}

var _ interfaces.NewsProvider = (*observableNews)(nil)

// Wrap wraps a news provider with observability middleware
func Wrap(provider interfaces.NewsProvider) interfaces.NewsProvider {
	return &observableNews{provider: provider}
}

func (on *observableNews) Name() string {
	return on.provider.Name()
}

func (on *observableNews) News(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	ctx, span := trace.StartSpan(ctx, "news.News")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching news", "ticker", ticker, "provider", on.provider.Name(), "limit", limit)

	items, err := on.provider.News(ctx, ticker, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "News fetch failed", err, "ticker", ticker, "provider", on.provider.Name())
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "News fetched", "ticker", ticker, "provider", on.provider.Name(), "articles", len(items))
	return items, nil
}
