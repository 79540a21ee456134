// Package server exposes the advisor over HTTP and serves the single-page UI.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// PriceRanger serves chart data for /history.
type PriceRanger interface {
	Range(ctx context.Context, ticker string, r market.Range) ([]types.PricePoint, error)
}

// MetricsProvider serves /metrics.
type MetricsProvider interface {
	Metrics(ctx context.Context, ticker string) (types.Fundamentals, error)
}

type Deps struct {
	Analyzer interfaces.Analyzer
	Searcher interfaces.SymbolSearcher
	History  PriceRanger
	Metrics  MetricsProvider
}

type Options struct {
	Addr           string
	CORSOrigin     string
	RequestTimeout time.Duration
}

func OptionsFromConfig(cfg *store.Config) Options {
	return Options{
		Addr:           cfg.Server.Addr,
		CORSOrigin:     cfg.Server.CORSOrigin,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
}

// Server manages the HTTP listener and routes.
type Server struct {
	d      Deps
	opts   Options
	server *http.Server
}

func New(d Deps, opts Options) *Server {
	s := &Server{d: d, opts: opts}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// an analysis may run up to RequestTimeout before the body is written
		WriteTimeout: opts.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	logger.Info(ctx, "HTTP server starting", "address", s.opts.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info(ctx, "HTTP server stopped")
	return nil
}
