// Package search finds tickers by symbol or company name.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// Service trims the query and dispatches to the configured backend.
type Service struct {
	backend interfaces.SymbolSearcher
	name    string
	local   *LocalIndex
	// timeout bounds one Search, rate limiter waits included; zero leaves it to the caller.
	timeout time.Duration
}

var _ interfaces.SymbolSearcher = (*Service)(nil)

func NewService(backend interfaces.SymbolSearcher, name string, timeout time.Duration) *Service {
	return &Service{backend: backend, name: name, timeout: timeout}
}

// New builds the search service. AUTO uses Finnhub when FINNHUB_API_KEY is set and the local index otherwise.
func New(ctx context.Context, cfg *store.Config) (*Service, error) {
	provider := cfg.Search.Provider
	if provider == "AUTO" {
		provider = "LOCAL"
		if cfg.Secrets.FinnhubAPIKey != "" {
			provider = "FINNHUB"
		}
	}

	if provider == "FINNHUB" {
		return NewService(NewFinnhub(FinnhubParams{
			BaseURL:       cfg.Search.BaseURL,
			APIKey:        cfg.Secrets.FinnhubAPIKey,
			MaxResults:    cfg.Search.MaxResults,
			Timeout:       cfg.Timeouts.Search,
			RatePerSecond: cfg.Search.RatePerSecond,
		}), "finnhub", cfg.Timeouts.Search), nil
	}

	symbols, err := LoadSymbols(cfg.Search.SymbolsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to load symbols from %s: %w", cfg.Search.SymbolsCSV, err)
	}
	local, err := NewLocalIndex(ctx, cfg.Search.IndexPath, symbols, cfg.Search.MaxResults)
	if err != nil {
		return nil, err
	}
	svc := NewService(local, "local", cfg.Timeouts.Search)
	svc.local = local
	return svc, nil
}

func (s *Service) Name() string { return s.name }

// Search returns matches for query; an empty query matches nothing.
func (s *Service) Search(ctx context.Context, query string) ([]types.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []types.SymbolMatch{}, nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	matches, err := s.backend.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Symbol search completed", "query", query, "backend", s.name, "matches", len(matches))
	if matches == nil {
		matches = []types.SymbolMatch{}
	}
	return matches, nil
}

func (s *Service) Close() error {
	if s.local != nil {
		return s.local.Close()
	}
	return nil
}
