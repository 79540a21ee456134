package market

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Static generates a deterministic random walk per ticker, for offline runs and demos.
type Static struct {
	base float64
}

var _ interfaces.PriceHistoryProvider = (*Static)(nil)

func NewStatic() *Static {
	return &Static{base: 100}
}

func (s *Static) Name() string { return "static" }

// History emits one bar per weekday in [from, to]. The same ticker and dates always yield the same bars.
func (s *Static) History(ctx context.Context, ticker string, from, to time.Time) ([]types.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	seed := int64(h.Sum64())

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := to.UTC()

	// Walk from a fixed epoch so a window's bars do not depend on where the window starts.
	epoch := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(seed))
	price := s.base + float64(seed%50+50)

	var points []types.PricePoint
	for d := epoch; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		open := price
		price = price * (1 + (rng.Float64()-0.5)*0.04)
		if price < 1 {
			price = 1
		}
		high := max(open, price) * (1 + rng.Float64()*0.01)
		low := min(open, price) * (1 - rng.Float64()*0.01)
		vol := 1e5 + rng.Float64()*9e5
		if d.Before(start) {
			continue
		}
		points = append(points, types.PricePoint{
			Date:   d,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: vol,
		})
	}
	return points, nil
}
