package news

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

const newsAPIBody = `{
  "status": "ok",
  "totalResults": 4,
  "articles": [
    {"source": {"name": "Reuters"}, "title": "Apple unveils new chip", "description": "<p>The <b>M5</b> chip ships today.</p>", "url": "https://example.com/1", "publishedAt": "2025-03-01T12:00:00Z"},
    {"source": {"name": "Blog"}, "title": "No description here", "description": null, "url": "https://example.com/2", "publishedAt": "2025-03-01T11:00:00Z"},
    {"source": {"name": "Bloomberg"}, "title": "Apple shares rise", "description": "Shares rose 2%.", "url": "https://example.com/3", "publishedAt": "2025-03-01T10:00:00Z"},
    {"source": {"name": "CNBC"}, "title": "Apple supplier news", "description": "Suppliers report.", "url": "https://example.com/4", "publishedAt": "2025-03-01T09:00:00Z"}
  ]
}`

func TestNewsAPIFiltersAndStrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, `"AAPL"`, r.URL.Query().Get("q"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer srv.Close()

	p := NewNewsAPI(NewsAPIParams{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second})
	items, err := p.News(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Apple unveils new chip", items[0].Title)
	assert.Equal(t, "The M5 chip ships today.", items[0].Snippet)
	assert.Equal(t, "Reuters", items[0].Source)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), items[0].PublishedAt)
	assert.Equal(t, "Apple shares rise", items[1].Title)
}

func TestNewsAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"too many requests"}`))
	}))
	defer srv.Close()

	_, err := NewNewsAPI(NewsAPIParams{BaseURL: srv.URL, APIKey: "k"}).News(context.Background(), "AAPL", 5)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "rateLimited")
}

func TestNewsAPIUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}))
	defer srv.Close()

	_, err := NewNewsAPI(NewsAPIParams{BaseURL: srv.URL, APIKey: "bad"}).News(context.Background(), "AAPL", 5)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestNewsAPIMissingKey(t *testing.T) {
	_, err := NewNewsAPI(NewsAPIParams{}).News(context.Background(), "AAPL", 5)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "", stripHTML(""))
	assert.Equal(t, "plain text", stripHTML("  plain \n text "))
	assert.Equal(t, "Click here now", stripHTML(`<a href="x">Click</a> here <i>now</i>`))
}
