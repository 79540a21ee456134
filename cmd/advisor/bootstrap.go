package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"stock-advisor/internal/analysis"
	"stock-advisor/internal/analysis/analysisobs"
	"stock-advisor/internal/fundamentals"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/llm"
	"stock-advisor/internal/llm/llmobs"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/market/marketobs"
	"stock-advisor/internal/narrative"
	"stock-advisor/internal/news"
	"stock-advisor/internal/news/newsobs"
	"stock-advisor/internal/predict"
	"stock-advisor/internal/predict/predictobs"
	"stock-advisor/internal/recorder"
	"stock-advisor/internal/scheduler"
	"stock-advisor/internal/scoring"
	"stock-advisor/internal/search"
	"stock-advisor/internal/sentiment"
	"stock-advisor/internal/server"
	"stock-advisor/internal/store"
)

const defaultConfigPath = "config.yaml"

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      *store.Config
	prices   interfaces.PriceHistoryProvider
	news     *news.Service
	analyzer interfaces.Analyzer
	searcher *search.Service
	history  *market.History
	metrics  *fundamentals.Service
	recorder interfaces.Recorder
}

// initializeSystem loads .env and sets up logging and tracing. verbose forces DEBUG over LOG_LEVEL.
func initializeSystem(verbose bool) error {
	_ = godotenv.Load()

	lc := logger.LoadConfigFromEnv()
	if verbose {
		lc.Level = "DEBUG"
		lc.DetailedLogging = true
	}
	if err := logger.InitWithConfig(lc); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// configPath prefers the --config flag, then ADVISOR_CONFIG, then config.yaml.
func configPath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("ADVISOR_CONFIG"); v != "" {
		return v
	}
	return defaultConfigPath
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializePrices returns the configured history provider with observability.
func initializePrices(ctx context.Context, cfg *store.Config) interfaces.PriceHistoryProvider {
	p := market.New(cfg)
	if cfg.Price.Provider == "STATIC" {
		logger.Warn(ctx, "Using STATIC price data - recommendations are not based on market prices")
	}
	logger.Info(ctx, "Price provider ready", "provider", p.Name(), "lookback_days", cfg.Price.LookbackDays)
	return marketobs.Wrap(p)
}

func initializePredictor(ctx context.Context, cfg *store.Config) interfaces.PricePredictor {
	if cfg.Predictor.Backend == "REMOTE" {
		logger.Info(ctx, "Using remote price model", "endpoint", cfg.Predictor.Endpoint, "model", cfg.Predictor.ModelName)
	} else {
		logger.Info(ctx, "Using linear trend predictor", "lookback", cfg.Predictor.LinearLookback)
	}
	return predictobs.Wrap(predict.New(cfg))
}

func initializeCompleter(ctx context.Context, cfg *store.Config, role string, lc store.LLMConfig, noopReply string) (interfaces.Completer, error) {
	c, err := llm.New(ctx, lc, cfg.Secrets, cfg.Timeouts.LLM, noopReply)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s model: %w", role, err)
	}
	if lc.Provider == "NOOP" {
		logger.Warn(ctx, "No language model configured - using Noop", "role", role)
	}
	logger.Info(ctx, "Language model ready", "role", role, "model", c.Name())
	return llmobs.Wrap(c), nil
}

// initializeApp wires every component. The returned cleanup closes what was opened.
func initializeApp(ctx context.Context, cfg *store.Config) (*app, func(), error) {
	a := &app{cfg: cfg}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn(ctx, "Failed to close component", "error", err)
			}
		}
	}

	a.prices = initializePrices(ctx, cfg)
	a.history = market.NewHistory(a.prices)
	a.metrics = fundamentals.New(market.NewFinanceGo(cfg.Timeouts.Price), a.prices)

	a.news = news.New(cfg)
	logger.Info(ctx, "News provider ready", "provider", a.news.Name(), "cache_ttl", cfg.News.CacheTTL.String())

	sentimentLLM, err := initializeCompleter(ctx, cfg, "sentiment", cfg.LLM.Sentiment, "50")
	if err != nil {
		return nil, cleanup, err
	}
	narrativeLLM, err := initializeCompleter(ctx, cfg, "narrative", cfg.LLM.Narrative, "")
	if err != nil {
		return nil, cleanup, err
	}
	gen := narrative.New(narrativeLLM)

	eng, err := scoring.New(scoring.ParamsFromConfig(cfg))
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialize scoring: %w", err)
	}

	a.recorder, err = recorder.New(ctx, cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to open recorder: %w", err)
	}
	closers = append(closers, a.recorder.Close)

	a.searcher, err = search.New(ctx, cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialize search: %w", err)
	}
	closers = append(closers, a.searcher.Close)
	logger.Info(ctx, "Symbol search ready", "backend", a.searcher.Name())

	a.analyzer = analysisobs.Wrap(analysis.New(analysis.Deps{
		Prices:    a.prices,
		Predictor: initializePredictor(ctx, cfg),
		News:      newsobs.Wrap(a.news),
		Sentiment: sentiment.New(sentimentLLM),
		Narrative: gen,
		Markdown:  gen,
		Engine:    eng,
		Recorder:  a.recorder,
	}, analysis.OptionsFromConfig(cfg)))

	return a, cleanup, nil
}

// initializeScheduler registers recorder retention, the daily summary and the news cache janitor.
func initializeScheduler(ctx context.Context, a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(ctx, 0)

	if m, ok := a.recorder.(recorder.Maintainer); ok && a.cfg.Recorder.RetentionDays > 0 {
		task := func(ctx context.Context) (int, error) {
			return m.Maintain(ctx, a.cfg.Recorder.RetentionDays)
		}
		if err := s.Register("recorder-retention", a.cfg.Recorder.Schedule, task); err != nil {
			return nil, err
		}
		s.RunNow("recorder-retention", task)
	}

	if j, ok := a.recorder.(*recorder.JSONL); ok {
		if err := s.Register("daily-summary", a.cfg.Recorder.SummarySchedule, j.SummarizeYesterday); err != nil {
			return nil, err
		}
	}

	if ttl := a.cfg.News.CacheTTL; ttl > 0 {
		if err := s.Register("news-cache", "@every "+ttl.String(), func(context.Context) (int, error) {
			return a.news.CleanupCache(), nil
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	sched, err := initializeScheduler(ctx, a)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Deps{
		Analyzer: a.analyzer,
		Searcher: a.searcher,
		History:  a.history,
		Metrics:  a.metrics,
	}, server.OptionsFromConfig(a.cfg))

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errc
}
