package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

func series(n int, start, step float64) []types.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.PricePoint, n)
	for i := range out {
		c := start + step*float64(i)
		out[i] = types.PricePoint{
			Date:   base.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i),
		}
	}
	return out
}

func TestBasisDropsFutureBars(t *testing.T) {
	points := series(10, 100, 1)
	asOf := points[6].Date

	got := Basis(points, asOf)
	require.Len(t, got, 7)
	for _, p := range got {
		assert.False(t, p.Date.After(asOf))
	}
}

func TestBasisSortsAscending(t *testing.T) {
	points := series(5, 100, 1)
	points[0], points[4] = points[4], points[0]

	got := Basis(points, points[0].Date.AddDate(1, 0, 0))
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date))
	}
}

func TestLinearExtrapolatesTrend(t *testing.T) {
	res, err := NewLinear(20).Predict(context.Background(), "AAPL", series(30, 100, 2))
	require.NoError(t, err)
	// last close is 158, slope 2
	assert.InDelta(t, 160, res.PredictedClose, 1e-6)
	assert.Equal(t, "linear", res.Model)
}

func TestLinearFlatSeries(t *testing.T) {
	res, err := NewLinear(5).Predict(context.Background(), "AAPL", series(10, 50, 0))
	require.NoError(t, err)
	assert.InDelta(t, 50, res.PredictedClose, 1e-9)
}

func TestLinearNeedsTwoBars(t *testing.T) {
	_, err := NewLinear(5).Predict(context.Background(), "AAPL", series(1, 50, 0))
	assert.Equal(t, apperr.KindModelInference, apperr.KindOf(err))
}

func TestScalerRoundTrip(t *testing.T) {
	rows := [][]float64{{10, 1}, {20, 1}, {15, 1}}
	s := fitMinMax(rows)
	scaled := s.transform(rows)

	assert.Equal(t, 0.0, scaled[0][0])
	assert.Equal(t, 1.0, scaled[1][0])
	assert.Equal(t, 0.5, scaled[2][0])
	// constant column scales to zero rather than dividing by zero
	assert.Equal(t, 0.0, scaled[2][1])
	assert.Equal(t, 15.0, s.inverse(0, 0.5))
}

func TestRemotePredict(t *testing.T) {
	var got predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/lstm:predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"predictions": [[0.75]]}`))
	}))
	defer srv.Close()

	basis := series(90, 100, 1) // closes 100..189
	p := NewRemote(RemoteParams{Endpoint: srv.URL, ModelName: "lstm", Window: 60, Timeout: time.Second})
	res, err := p.Predict(context.Background(), "AAPL", basis)
	require.NoError(t, err)

	require.Len(t, got.Instances, 1)
	assert.Len(t, got.Instances[0], 60)
	assert.Len(t, got.Instances[0][0], 5)
	// last row's close is the window maximum
	assert.Equal(t, 1.0, got.Instances[0][59][0])

	// 0.75 on [100, 189] -> 166.75
	assert.InDelta(t, 166.75, res.PredictedClose, 1e-9)
	assert.Len(t, res.Basis, 90)
}

func TestRemoteFlatPredictionsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": [0.5]}`))
	}))
	defer srv.Close()

	res, err := NewRemote(RemoteParams{Endpoint: srv.URL, Window: 10}).Predict(context.Background(), "AAPL", series(10, 100, 1))
	require.NoError(t, err)
	assert.InDelta(t, 104.5, res.PredictedClose, 1e-9)
}

func TestRemoteMalformedOutput(t *testing.T) {
	for _, body := range []string{`{"predictions": []}`, `{"predictions": "n/a"}`, `not json`, `{"error": "model not loaded"}`, `{"predictions": [[-50]]}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewRemote(RemoteParams{Endpoint: srv.URL, Window: 10}).Predict(context.Background(), "AAPL", series(10, 100, 1))
		srv.Close()
		require.Error(t, err, body)
		assert.Equal(t, apperr.KindModelInference, apperr.KindOf(err), body)
	}
}

func TestRemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRemote(RemoteParams{Endpoint: srv.URL, Window: 10}).Predict(context.Background(), "AAPL", series(10, 100, 1))
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestRemoteInsufficientHistory(t *testing.T) {
	_, err := NewRemote(RemoteParams{Endpoint: "http://unused", Window: 60}).Predict(context.Background(), "AAPL", series(20, 100, 1))
	assert.Equal(t, apperr.KindModelInference, apperr.KindOf(err))
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := store.Default()
	_, ok := New(cfg).(*Linear)
	assert.True(t, ok)

	cfg.Predictor.Backend = "REMOTE"
	cfg.Predictor.Endpoint = "http://localhost:8501"
	_, ok = New(cfg).(*Remote)
	assert.True(t, ok)
}
