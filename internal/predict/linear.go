package predict

import (
	"context"
	"fmt"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Linear extrapolates an ordinary least-squares line through the last lookback closes.
// It stands in for the sequence model when no model server is configured.
type Linear struct {
	lookback int
}

var _ interfaces.PricePredictor = (*Linear)(nil)

func NewLinear(lookback int) *Linear {
	if lookback < 2 {
		lookback = 20
	}
	return &Linear{lookback: lookback}
}

func (l *Linear) Predict(ctx context.Context, ticker string, basis []types.PricePoint) (types.PredictionResult, error) {
	if len(basis) < 2 {
		return types.PredictionResult{}, apperr.ModelInference(stage, "linear",
			fmt.Errorf("need at least 2 bars, have %d", len(basis)))
	}
	tail := basis
	if len(tail) > l.lookback {
		tail = tail[len(tail)-l.lookback:]
	}

	n := float64(len(tail))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range tail {
		x := float64(i)
		sumX += x
		sumY += p.Close
		sumXY += x * p.Close
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n
	predicted := intercept + slope*n

	if predicted <= 0 {
		return types.PredictionResult{}, apperr.ModelInference(stage, "linear",
			fmt.Errorf("extrapolated close %v is not positive", predicted))
	}
	return types.PredictionResult{
		PredictedClose: predicted,
		Basis:          basis,
		Model:          "linear",
	}, nil
}
