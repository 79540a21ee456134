package search

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/api"
	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const (
	stage             = "search"
	defaultFinnhubURL = "https://finnhub.io"
	// profileLookups bounds concurrent profile2 calls per search.
	profileLookups = 4
)

// Finnhub resolves free-text queries with Finnhub's symbol lookup and enriches each hit with its company profile.
type Finnhub struct {
	client     *api.Client
	apiKey     string
	maxResults int
}

var _ interfaces.SymbolSearcher = (*Finnhub)(nil)

type FinnhubParams struct {
	BaseURL       string
	APIKey        string
	MaxResults    int
	Timeout       time.Duration
	RatePerSecond float64
}

func NewFinnhub(p FinnhubParams) *Finnhub {
	if p.BaseURL == "" {
		p.BaseURL = defaultFinnhubURL
	}
	if p.MaxResults <= 0 {
		p.MaxResults = 10
	}
	return &Finnhub{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(p.BaseURL, "/")),
			api.WithTimeout(p.Timeout),
			api.WithRateLimit(p.RatePerSecond, max(profileLookups, int(p.RatePerSecond))),
			api.WithLogging(true),
		),
		apiKey:     p.APIKey,
		maxResults: p.MaxResults,
	}
}

type lookupResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

type profileResponse struct {
	Name     string `json:"name"`
	Logo     string `json:"logo"`
	Exchange string `json:"exchange"`
	Ticker   string `json:"ticker"`
}

// Search answers a free-text query, or a comma-separated list of tickers which are resolved directly.
// Lookup hits are restricted to common stock listed without an exchange suffix.
func (f *Finnhub) Search(ctx context.Context, query string) ([]types.SymbolMatch, error) {
	if f.apiKey == "" {
		return nil, apperr.Upstream(stage, "finnhub", errors.New("FINNHUB_API_KEY is not set"))
	}

	var symbols []string
	if tickers, ok := splitList(query); ok {
		symbols = tickers
	} else {
		var err error
		if symbols, err = f.lookup(ctx, query); err != nil {
			return nil, err
		}
	}
	if len(symbols) > f.maxResults {
		symbols = symbols[:f.maxResults]
	}
	return f.enrich(ctx, symbols)
}

func (f *Finnhub) lookup(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("token", f.apiKey)

	resp, err := f.client.GET(ctx, "/api/v1/search?"+q.Encode())
	if err != nil {
		return nil, apperr.FromTransport(stage, "finnhub", "", err)
	}
	var out lookupResponse
	if err := resp.ParseJSON(&out); err != nil {
		return nil, apperr.Upstream(stage, "finnhub", err)
	}

	seen := make(map[string]bool)
	symbols := make([]string, 0, len(out.Result))
	for _, r := range out.Result {
		if r.Symbol == "" || seen[r.Symbol] {
			continue
		}
		if r.Type != "Common Stock" || strings.Contains(r.Symbol, ".") {
			continue
		}
		seen[r.Symbol] = true
		symbols = append(symbols, r.Symbol)
	}
	return symbols, nil
}

// enrich fetches profiles concurrently and keeps the input order. Symbols whose profile has no
// name are dropped; a failed profile call only fails the search when every call failed.
func (f *Finnhub) enrich(ctx context.Context, symbols []string) ([]types.SymbolMatch, error) {
	profiles := make([]*profileResponse, len(symbols))
	var (
		mu      sync.Mutex
		lastErr error
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileLookups)
	for i, sym := range symbols {
		g.Go(func() error {
			p, err := f.profile(gctx, sym)
			if err != nil {
				logger.Warn(ctx, "Could not fetch company profile, skipping", "symbol", sym, "error", err)
				mu.Lock()
				lastErr = err
				failed++
				mu.Unlock()
				return nil
			}
			profiles[i] = p
			return nil
		})
	}
	_ = g.Wait()

	if len(symbols) > 0 && failed == len(symbols) {
		return nil, apperr.FromTransport(stage, "finnhub", "", lastErr)
	}

	matches := make([]types.SymbolMatch, 0, len(symbols))
	for i, p := range profiles {
		if p == nil || p.Name == "" {
			continue
		}
		matches = append(matches, types.SymbolMatch{
			Ticker:   symbols[i],
			Name:     p.Name,
			Exchange: p.Exchange,
			Logo:     p.Logo,
		})
	}
	return matches, nil
}

func (f *Finnhub) profile(ctx context.Context, symbol string) (*profileResponse, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", f.apiKey)

	resp, err := f.client.GET(ctx, "/api/v1/stock/profile2?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var p profileResponse
	if err := resp.ParseJSON(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// splitList recognizes "AAPL, MSFT" style input.
func splitList(query string) ([]string, bool) {
	if !strings.Contains(query, ",") {
		return nil, false
	}
	var out []string
	seen := make(map[string]bool)
	for _, s := range strings.Split(query, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, true
}
