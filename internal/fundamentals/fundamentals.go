// Package fundamentals computes valuation and risk figures for a ticker.
package fundamentals

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

const (
	stage = "metrics"
	// tradingDays annualizes daily volatility.
	tradingDays = 252
	riskMonths  = 6
)

type Service struct {
	quotes interfaces.QuoteSource
	prices interfaces.PriceHistoryProvider
	now    func() time.Time
}

func New(quotes interfaces.QuoteSource, prices interfaces.PriceHistoryProvider) *Service {
	return &Service{quotes: quotes, prices: prices, now: time.Now}
}

// Metrics fetches the equity quote and six months of closes concurrently and derives
// PE, PB, annualized volatility, the Graham number and the latest daily bar.
func (s *Service) Metrics(ctx context.Context, ticker string) (types.Fundamentals, error) {
	var (
		quote types.EquityQuote
		bars  []types.PricePoint
	)
	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.quotes.Equity(gctx, ticker)
		if err != nil {
			return apperr.WithStage(apperr.FromTransport(stage, "quote", ticker, err), stage)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		b, err := s.prices.History(gctx, ticker, now.AddDate(0, -riskMonths, 0), now)
		if err != nil {
			return apperr.WithStage(apperr.FromTransport(stage, s.prices.Name(), ticker, err), stage)
		}
		bars = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Fundamentals{}, err
	}

	if len(bars) == 0 && quote.Price == 0 {
		return types.Fundamentals{}, apperr.InvalidTicker(stage, ticker, errors.New("no quote or price data"))
	}

	f := types.Fundamentals{
		Ticker:       ticker,
		PERatio:      positive(quote.TrailingPE, 2),
		PBRatio:      positive(quote.PriceToBook, 2),
		Risk:         Volatility(bars),
		GrahamNumber: GrahamNumber(quote.EPS, quote.BookValue),
		Daily:        daily(quote, bars),
		Technical:    technical(bars),
	}
	return f, nil
}

// Volatility is the sample standard deviation of daily returns scaled by sqrt(252), rounded to 4 places.
// It is nil with fewer than two returns.
func Volatility(bars []types.PricePoint) *float64 {
	sd := ta.SampleStdDev(ta.Returns(ta.Closes(bars)))
	if math.IsNaN(sd) {
		return nil
	}
	return ptr(round(sd*math.Sqrt(tradingDays), 4))
}

// technical reports SMA50 and RSI14 over the fetched closes; each is nil without enough bars.
func technical(bars []types.PricePoint) types.TechnicalStats {
	closes := ta.Closes(bars)
	return types.TechnicalStats{
		SMA50: finite(ta.SMA(closes, 50), 2),
		RSI14: finite(ta.RSI(closes, 14), 2),
	}
}

// GrahamNumber is sqrt(22.5 * eps * bvps), defined only when both are positive.
func GrahamNumber(eps, bvps float64) *float64 {
	if eps <= 0 || bvps <= 0 {
		return nil
	}
	return ptr(round(math.Sqrt(22.5*eps*bvps), 2))
}

// daily prefers the most recent bar and falls back to the quote's session values.
func daily(q types.EquityQuote, bars []types.PricePoint) types.DailyStats {
	if n := len(bars); n > 0 {
		last := bars[n-1]
		vol := int64(last.Volume)
		return types.DailyStats{
			Open:   ptr(round(last.Open, 2)),
			High:   ptr(round(last.High, 2)),
			Low:    ptr(round(last.Low, 2)),
			Volume: &vol,
		}
	}
	d := types.DailyStats{
		Open: positive(q.Open, 2),
		High: positive(q.High, 2),
		Low:  positive(q.Low, 2),
	}
	if q.Volume > 0 {
		vol := q.Volume
		d.Volume = &vol
	}
	return d
}

func positive(v float64, places int) *float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return ptr(round(v, places))
}

func finite(v float64, places int) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return ptr(round(v, places))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func ptr(v float64) *float64 { return &v }
