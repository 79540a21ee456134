// Package analysis runs one recommendation request end to end.
package analysis

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/predict"
	"stock-advisor/internal/scoring"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// Deps are the collaborators of an Orchestrator. Markdown and Recorder may be nil.
type Deps struct {
	Prices    interfaces.PriceHistoryProvider
	Predictor interfaces.PricePredictor
	News      interfaces.NewsProvider
	Sentiment interfaces.SentimentScorer
	Narrative interfaces.NarrativeGenerator
	Markdown  interfaces.MarkdownRenderer
	Engine    *scoring.Engine
	Recorder  interfaces.Recorder
}

type Options struct {
	LookbackDays int
	MaxArticles  int
	// Timeout bounds the whole request; zero means only the caller's context applies.
	Timeout time.Duration
}

func OptionsFromConfig(cfg *store.Config) Options {
	return Options{
		LookbackDays: cfg.Price.LookbackDays,
		MaxArticles:  cfg.News.MaxArticles,
		Timeout:      cfg.Server.RequestTimeout,
	}
}

// Orchestrator is safe for concurrent use; requests share nothing but the collaborators.
type Orchestrator struct {
	d    Deps
	opts Options
	now  func() time.Time
}

var _ interfaces.Analyzer = (*Orchestrator)(nil)

func New(d Deps, opts Options) *Orchestrator {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 90
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 5
	}
	return &Orchestrator{d: d, opts: opts, now: time.Now}
}

// Analyze fetches prices and news concurrently, then runs prediction, sentiment, scoring,
// summary and explanation in order. Any failing step fails the request.
func (o *Orchestrator) Analyze(ctx context.Context, ticker string) (types.RecommendationResult, error) {
	ticker, err := market.NormalizeTicker(ticker)
	if err != nil {
		return types.RecommendationResult{}, err
	}
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	asOf := o.now()

	var (
		bars []types.PricePoint
		news []types.NewsItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		points, err := market.Lookback(gctx, o.d.Prices, ticker, o.opts.LookbackDays, asOf)
		if err != nil {
			return apperr.FromTransport("price", o.d.Prices.Name(), ticker, err)
		}
		bars = predict.Basis(points, asOf)
		if len(bars) == 0 {
			return apperr.InvalidTicker("price", ticker, errors.New("no price history"))
		}
		return nil
	})
	g.Go(func() error {
		items, err := o.d.News.News(gctx, ticker, o.opts.MaxArticles)
		if err != nil {
			return apperr.FromTransport("news", o.d.News.Name(), "", err)
		}
		news = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.RecommendationResult{}, err
	}

	lastClose := bars[len(bars)-1].Close
	logger.Debug(ctx, "Inputs fetched", "ticker", ticker, "bars", len(bars), "last_close", lastClose, "news", len(news))

	pred, err := o.d.Predictor.Predict(ctx, ticker, bars)
	if err != nil {
		return types.RecommendationResult{}, apperr.WithStage(err, "predict")
	}

	sent, err := o.d.Sentiment.Score(ctx, ticker, news)
	if err != nil {
		return types.RecommendationResult{}, apperr.WithStage(err, "sentiment")
	}

	score, err := o.d.Engine.Evaluate(pred.PredictedClose, lastClose, float64(sent.Score))
	if err != nil {
		return types.RecommendationResult{}, apperr.WithStage(err, "scoring")
	}

	summary, err := o.d.Narrative.Summarize(ctx, ticker, news)
	if err != nil {
		return types.RecommendationResult{}, apperr.WithStage(err, "summary")
	}

	explanation, err := o.d.Narrative.Explain(ctx, types.ExplanationInput{
		Ticker:         ticker,
		LastClose:      lastClose,
		PredictedClose: pred.PredictedClose,
		PriceScore:     score.PriceScore,
		SentimentScore: sent.Score,
		FinalScore:     score.FinalScore,
		Label:          score.Label,
		NewsText:       types.NewsText(news),
	})
	if err != nil {
		return types.RecommendationResult{}, apperr.WithStage(err, "explanation")
	}

	res := types.RecommendationResult{
		Ticker:         ticker,
		PredictedClose: pred.PredictedClose,
		LastClose:      lastClose,
		PriceTrendPct:  score.PriceTrendPct,
		PriceScore:     score.PriceScore,
		SentimentScore: sent.Score,
		FinalScore:     score.FinalScore,
		Label:          score.Label,
		NewsSummary:    summary,
		Explanation:    explanation,
		NewsCount:      len(news),
		GeneratedAt:    asOf.UTC(),
	}
	if o.d.Markdown != nil {
		if html, err := o.d.Markdown.HTML(explanation); err != nil {
			logger.Warn(ctx, "Failed to render explanation", "ticker", ticker, "error", err)
		} else {
			res.ExplanationHTML = html
		}
	}

	logger.Recommendation(ctx, ticker, string(res.Label), res.FinalScore,
		"last_close", res.LastClose,
		"predicted_close", res.PredictedClose,
		"price_score", res.PriceScore,
		"sentiment", res.SentimentScore,
		"model", pred.Model,
	)

	if o.d.Recorder != nil {
		// recorded even when the client has already gone away
		if err := o.d.Recorder.Record(context.WithoutCancel(ctx), res); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record analysis", err, "ticker", ticker)
		}
	}
	return res, nil
}
