package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/apperr"
)

func finnhubServer(t *testing.T, profiles map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/search":
			_, _ = w.Write([]byte(`{"count":6,"result":[
				{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"},
				{"description":"APPLE INC","displaySymbol":"AAPL.MX","symbol":"AAPL.MX","type":"Common Stock"},
				{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"},
				{"description":"APPLE ETF","displaySymbol":"APLE","symbol":"APLE","type":"ETP"},
				{"description":"APPLE HOSPITALITY","displaySymbol":"APLH","symbol":"APLH","type":"Common Stock"},
				{"description":"PINEAPPLE","displaySymbol":"PNPL","symbol":"PNPL","type":"Common Stock"}
			]}`))
		case "/api/v1/stock/profile2":
			body, ok := profiles[r.URL.Query().Get("symbol")]
			if !ok {
				body = `{}`
			}
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFinnhubSearch(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"AAPL": `{"name":"Apple Inc","logo":"https://logo/aapl.png","exchange":"NASDAQ NMS - GLOBAL MARKET","ticker":"AAPL"}`,
		"APLH": `{"name":"Apple Hospitality REIT","logo":"","exchange":"NYSE","ticker":"APLH"}`,
	})
	defer srv.Close()

	f := NewFinnhub(FinnhubParams{BaseURL: srv.URL, APIKey: "k", MaxResults: 10, Timeout: time.Second})
	matches, err := f.Search(context.Background(), "apple")
	require.NoError(t, err)

	// AAPL.MX has a suffix, APLE is not common stock, the duplicate AAPL is dropped and PNPL has no profile name.
	require.Len(t, matches, 2)
	assert.Equal(t, "AAPL", matches[0].Ticker)
	assert.Equal(t, "Apple Inc", matches[0].Name)
	assert.Equal(t, "https://logo/aapl.png", matches[0].Logo)
	assert.Equal(t, "APLH", matches[1].Ticker)
}

func TestFinnhubMaxResults(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"AAPL": `{"name":"Apple Inc"}`,
		"APLH": `{"name":"Apple Hospitality REIT"}`,
	})
	defer srv.Close()

	f := NewFinnhub(FinnhubParams{BaseURL: srv.URL, APIKey: "k", MaxResults: 1})
	matches, err := f.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "AAPL", matches[0].Ticker)
}

func TestFinnhubCommaList(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"MSFT": `{"name":"Microsoft Corp"}`,
		"GOOG": `{"name":"Alphabet Inc"}`,
	})
	defer srv.Close()

	f := NewFinnhub(FinnhubParams{BaseURL: srv.URL, APIKey: "k"})
	matches, err := f.Search(context.Background(), "msft, goog,,MSFT")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "MSFT", matches[0].Ticker)
	assert.Equal(t, "GOOG", matches[1].Ticker)
}

func TestFinnhubLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewFinnhub(FinnhubParams{BaseURL: srv.URL, APIKey: "k"}).Search(context.Background(), "apple")
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestFinnhubAllProfilesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewFinnhub(FinnhubParams{BaseURL: srv.URL, APIKey: "k"}).Search(context.Background(), "AAPL,MSFT")
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestFinnhubMissingKey(t *testing.T) {
	_, err := NewFinnhub(FinnhubParams{}).Search(context.Background(), "apple")
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestSplitList(t *testing.T) {
	got, ok := splitList(" aapl , msft ,")
	assert.True(t, ok)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)

	_, ok = splitList("apple")
	assert.False(t, ok)
}

func TestFinnhubRateLimitAllowsProfileBurst(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"AAPL": `{"name":"Apple Inc"}`,
		"APLH": `{"name":"Apple Hospitality REIT"}`,
	})
	defer srv.Close()

	// one lookup and three profile calls fit in the initial burst at 1 rps
	f := NewFinnhub(FinnhubParams{BaseURL: srv.URL, APIKey: "k", MaxResults: 10, Timeout: time.Second, RatePerSecond: 1})
	start := time.Now()
	matches, err := f.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
