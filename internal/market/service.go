package market

import (
	"context"
	"errors"
	"time"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// New builds the configured price provider.
func New(cfg *store.Config) interfaces.PriceHistoryProvider {
	switch cfg.Price.Provider {
	case "FINANCEGO":
		return NewFinanceGo(cfg.Timeouts.Price)
	case "KITE":
		return NewKite(KiteParams{
			APIKey:      cfg.Secrets.KiteAPIKey,
			AccessToken: cfg.Secrets.KiteAccessToken,
			Exchange:    cfg.Price.Exchange,
			Timeout:     cfg.Timeouts.Price,
		})
	case "STATIC":
		return NewStatic()
	default:
		return NewYahoo(cfg.Price.BaseURL, cfg.Timeouts.Price)
	}
}

// History serves chart ranges on top of a provider.
type History struct {
	provider interfaces.PriceHistoryProvider
	now      func() time.Time
}

func NewHistory(provider interfaces.PriceHistoryProvider) *History {
	return &History{provider: provider, now: time.Now}
}

// Range returns the bars for ticker over r. An empty result means the ticker is unknown.
func (h *History) Range(ctx context.Context, ticker string, r Range) ([]types.PricePoint, error) {
	from, to := r.Window(h.now())
	points, err := h.provider.History(ctx, ticker, from, to)
	if err != nil {
		return nil, apperr.FromTransport("history", h.provider.Name(), ticker, err)
	}
	if len(points) == 0 {
		return nil, apperr.InvalidTicker("history", ticker, errors.New("no price data for range "+string(r)))
	}
	return points, nil
}

// Lookback fetches the last days calendar days ending at now.
func Lookback(ctx context.Context, p interfaces.PriceHistoryProvider, ticker string, days int, now time.Time) ([]types.PricePoint, error) {
	return p.History(ctx, ticker, now.AddDate(0, 0, -days), now)
}
