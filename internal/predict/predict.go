// Package predict estimates the next daily close from recent bars.
package predict

import (
	"sort"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

const stage = "predict"

// Feature order expected by the model: close, open, high, low, volume.
const closeCol = 0

func features(p types.PricePoint) []float64 {
	return []float64{p.Close, p.Open, p.High, p.Low, p.Volume}
}

// Basis returns the bars dated at or before asOf, in ascending order.
// Bars after asOf would leak future information into the forecast.
func Basis(points []types.PricePoint, asOf time.Time) []types.PricePoint {
	out := make([]types.PricePoint, 0, len(points))
	for _, p := range points {
		if !p.Date.After(asOf) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// New builds the configured predictor.
func New(cfg *store.Config) interfaces.PricePredictor {
	if cfg.Predictor.Backend == "REMOTE" {
		return NewRemote(RemoteParams{
			Endpoint:  cfg.Predictor.Endpoint,
			ModelName: cfg.Predictor.ModelName,
			Window:    cfg.Predictor.Window,
			Timeout:   cfg.Timeouts.Predict,
		})
	}
	return NewLinear(cfg.Predictor.LinearLookback)
}
