package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// FinanceGo reads bars and equity quotes through the piquette/finance-go Yahoo client.
type FinanceGo struct {
	timeout time.Duration
}

var (
	_ interfaces.PriceHistoryProvider = (*FinanceGo)(nil)
	_ interfaces.QuoteSource          = (*FinanceGo)(nil)
)

func NewFinanceGo(timeout time.Duration) *FinanceGo {
	return &FinanceGo{timeout: timeout}
}

func (f *FinanceGo) Name() string { return "finance-go" }

func (f *FinanceGo) History(ctx context.Context, ticker string, from, to time.Time) ([]types.PricePoint, error) {
	ctx, cancel := f.bound(ctx)
	defer cancel()

	points, err := callCtx(ctx, func() ([]types.PricePoint, error) {
		iter := chart.Get(&chart.Params{
			Symbol:   ticker,
			Start:    datetime.New(&from),
			End:      datetime.New(&to),
			Interval: datetime.OneDay,
		})
		var out []types.PricePoint
		for iter.Next() {
			out = append(out, barToPoint(iter.Bar()))
		}
		return out, iter.Err()
	})
	if err != nil {
		return nil, classifyFinanceErr(ticker, err)
	}
	return points, nil
}

func (f *FinanceGo) Equity(ctx context.Context, ticker string) (types.EquityQuote, error) {
	ctx, cancel := f.bound(ctx)
	defer cancel()

	q, err := callCtx(ctx, func() (*finance.Equity, error) {
		return equity.Get(ticker)
	})
	if err != nil {
		return types.EquityQuote{}, classifyFinanceErr(ticker, err)
	}
	if q == nil {
		return types.EquityQuote{}, apperr.InvalidTicker("fundamentals", ticker, errors.New("no equity quote"))
	}
	return types.EquityQuote{
		Symbol:      q.Symbol,
		Name:        q.ShortName,
		Price:       q.RegularMarketPrice,
		Open:        q.RegularMarketOpen,
		High:        q.RegularMarketDayHigh,
		Low:         q.RegularMarketDayLow,
		Volume:      int64(q.RegularMarketVolume),
		TrailingPE:  q.TrailingPE,
		PriceToBook: q.PriceToBook,
		EPS:         q.EpsTrailingTwelveMonths,
		BookValue:   q.BookValue,
	}, nil
}

func (f *FinanceGo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func barToPoint(b *finance.ChartBar) types.PricePoint {
	return types.PricePoint{
		Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
		Open:   decimalFloat(b.Open),
		High:   decimalFloat(b.High),
		Low:    decimalFloat(b.Low),
		Close:  decimalFloat(b.Close),
		Volume: float64(b.Volume),
	}
}

func decimalFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func classifyFinanceErr(ticker string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Upstream(stagePrice, "finance-go", err)
	}
	return apperr.Upstream(stagePrice, "finance-go", fmt.Errorf("finance-go %s: %w", ticker, err))
}
