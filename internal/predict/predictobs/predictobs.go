package predictobs

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type observablePredictor struct {
	predictor interfaces.PricePredictor
}

var _ interfaces.PricePredictor = (*observablePredictor)(nil)

// Wrap wraps a predictor with observability middleware
func Wrap(predictor interfaces.PricePredictor) interfaces.PricePredictor {
	return &observablePredictor{predictor: predictor}
}

func (op *observablePredictor) Predict(ctx context.Context, ticker string, basis []types.PricePoint) (types.PredictionResult, error) {
	ctx, span := trace.StartSpan(ctx, "predict.Predict")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting price prediction", "ticker", ticker, "bars", len(basis))

	res, err := op.predictor.Predict(ctx, ticker, basis)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Price prediction failed", err, "ticker", ticker)
		return types.PredictionResult{}, err
	}

	logger.InfoSkip(ctx, 1, "Price prediction received",
		"ticker", ticker,
		"model", res.Model,
		"predicted_close", res.PredictedClose,
	)
	return res, nil
}
