package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Remote calls a pre-trained sequence model behind a TensorFlow-Serving style REST API:
// POST {endpoint}/v1/models/{name}:predict with {"instances": [window x features]}.
type Remote struct {
	client *api.Client
	model  string
	window int
}

var _ interfaces.PricePredictor = (*Remote)(nil)

type RemoteParams struct {
	Endpoint  string
	ModelName string
	Window    int
	Timeout   time.Duration
}

func NewRemote(p RemoteParams) *Remote {
	if p.Window <= 0 {
		p.Window = 60
	}
	if p.ModelName == "" {
		p.ModelName = "lstm"
	}
	return &Remote{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(p.Endpoint, "/")),
			api.WithTimeout(p.Timeout),
			api.WithLogging(true),
		),
		model:  p.ModelName,
		window: p.Window,
	}
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions json.RawMessage `json:"predictions"`
	Error       string          `json:"error"`
}

func (r *Remote) Predict(ctx context.Context, ticker string, basis []types.PricePoint) (types.PredictionResult, error) {
	if len(basis) < r.window {
		return types.PredictionResult{}, apperr.ModelInference(stage, r.model,
			fmt.Errorf("need %d bars, have %d", r.window, len(basis)))
	}

	rows := make([][]float64, len(basis))
	for i, p := range basis {
		rows[i] = features(p)
	}
	scaler := fitMinMax(rows)
	scaled := scaler.transform(rows)
	window := scaled[len(scaled)-r.window:]

	resp, err := r.client.POST(ctx, "/v1/models/"+r.model+":predict", predictRequest{
		Instances: [][][]float64{window},
	})
	if err != nil {
		return types.PredictionResult{}, apperr.FromTransport(stage, r.model, "", err)
	}

	var out predictResponse
	if err := resp.ParseJSON(&out); err != nil {
		return types.PredictionResult{}, apperr.ModelInference(stage, r.model, err)
	}
	if out.Error != "" {
		return types.PredictionResult{}, apperr.ModelInference(stage, r.model, errors.New(out.Error))
	}
	v, err := firstNumber(out.Predictions)
	if err != nil {
		return types.PredictionResult{}, apperr.ModelInference(stage, r.model, err)
	}

	predicted := scaler.inverse(closeCol, v)
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted <= 0 {
		return types.PredictionResult{}, apperr.ModelInference(stage, r.model,
			fmt.Errorf("implausible prediction %v", predicted))
	}

	return types.PredictionResult{
		PredictedClose: predicted,
		Basis:          basis,
		Model:          r.model,
	}, nil
}

// firstNumber digs the first scalar out of a predictions payload such as [[0.42]] or [0.42].
func firstNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing predictions")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return 0, fmt.Errorf("unexpected predictions payload: %s", truncate(string(raw), 80))
	}
	if len(arr) == 0 {
		return 0, errors.New("empty predictions")
	}
	return firstNumber(arr[0])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
