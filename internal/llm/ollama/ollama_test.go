package ollama

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
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phi3", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, "hello", req.Prompt)
		assert.EqualValues(t, 128, req.Options["num_predict"])
		_, _ = w.Write([]byte(`{"model":"phi3","response":"  - point one\n","done":true}`))
	}))
	defer srv.Close()

	c := New(Params{Endpoint: srv.URL, Model: "phi3", MaxTokens: 128, Timeout: time.Second})
	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "- point one", out)
	assert.Equal(t, "ollama:phi3", c.Name())
}

func TestCompleteModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model 'phi3' not found"}`))
	}))
	defer srv.Close()

	_, err := New(Params{Endpoint: srv.URL, Model: "phi3"}).Complete(context.Background(), "hi")
	assert.Equal(t, apperr.KindModelInference, apperr.KindOf(err))
}

func TestCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(Params{Endpoint: url, Model: "phi3", Timeout: time.Second}).Complete(context.Background(), "hi")
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}
