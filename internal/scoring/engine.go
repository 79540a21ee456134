// Package scoring turns a price forecast and a news sentiment score into a Buy/Hold/Sell call.
package scoring

import (
	"fmt"
	"math"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

const stage = "scoring"

type TrendMode string

const (
	// Linear maps -Band..+Band percent onto 0..100 and clamps outside the band.
	Linear TrendMode = "LINEAR"
	// Stepped buckets the trend into 10/30/50/70/90.
	Stepped TrendMode = "STEPPED"
)

// Params configures the engine. Weights must sum to 1 and Low must be below High.
type Params struct {
	Mode            TrendMode
	BandPct         float64
	PriceWeight     float64
	SentimentWeight float64
	Low             float64
	High            float64
}

func DefaultParams() Params {
	return Params{
		Mode:            Linear,
		BandPct:         10,
		PriceWeight:     0.5,
		SentimentWeight: 0.5,
		Low:             40,
		High:            60,
	}
}

func ParamsFromConfig(cfg *store.Config) Params {
	return Params{
		Mode:            TrendMode(cfg.Scoring.TrendMode),
		BandPct:         cfg.Scoring.BandPct,
		PriceWeight:     cfg.Scoring.PriceWeight,
		SentimentWeight: cfg.Scoring.SentimentWeight,
		Low:             cfg.Scoring.Low,
		High:            cfg.Scoring.High,
	}
}

// Engine is stateless and safe for concurrent use.
type Engine struct {
	p Params
}

func New(p Params) (*Engine, error) {
	if p.Mode != Linear && p.Mode != Stepped {
		return nil, fmt.Errorf("unknown trend mode %q", p.Mode)
	}
	if p.BandPct <= 0 {
		return nil, fmt.Errorf("band must be positive, got %v", p.BandPct)
	}
	if p.PriceWeight < 0 || p.SentimentWeight < 0 || math.Abs(p.PriceWeight+p.SentimentWeight-1) > 1e-9 {
		return nil, fmt.Errorf("weights must be non-negative and sum to 1, got %v and %v", p.PriceWeight, p.SentimentWeight)
	}
	if p.Low >= p.High {
		return nil, fmt.Errorf("low threshold %v must be below high threshold %v", p.Low, p.High)
	}
	return &Engine{p: p}, nil
}

func (e *Engine) Params() Params {
	return e.p
}

// Evaluate scores a forecast. lastClose must be positive, predictedClose non-negative and
// sentiment must lie in [0,100].
func (e *Engine) Evaluate(predictedClose, lastClose float64, sentiment float64) (types.Score, error) {
	if !finite(predictedClose) || !finite(lastClose) {
		return types.Score{}, apperr.InvalidInput(stage, "prices must be finite, got predicted=%v last=%v", predictedClose, lastClose)
	}
	if lastClose <= 0 {
		return types.Score{}, apperr.InvalidInput(stage, "last close must be positive, got %v", lastClose)
	}
	if predictedClose < 0 {
		return types.Score{}, apperr.InvalidInput(stage, "predicted close must not be negative, got %v", predictedClose)
	}
	if !finite(sentiment) || sentiment < 0 || sentiment > 100 {
		return types.Score{}, apperr.InvalidInput(stage, "sentiment score %v outside [0,100]", sentiment)
	}

	trendPct := (predictedClose - lastClose) / lastClose * 100
	if !finite(trendPct) {
		return types.Score{}, apperr.InvalidInput(stage, "price trend overflows for predicted=%v last=%v", predictedClose, lastClose)
	}
	priceScore := e.priceScore(trendPct)
	final := e.p.PriceWeight*priceScore + e.p.SentimentWeight*sentiment

	return types.Score{
		PriceTrendPct: trendPct,
		PriceScore:    priceScore,
		FinalScore:    final,
		Label:         e.Label(final),
	}, nil
}

// Label partitions the score line: (-inf, Low] Sell, (Low, High) Hold, [High, +inf) Buy.
func (e *Engine) Label(final float64) types.Label {
	switch {
	case final <= e.p.Low:
		return types.Sell
	case final >= e.p.High:
		return types.Buy
	default:
		return types.Hold
	}
}

func (e *Engine) priceScore(trendPct float64) float64 {
	if e.p.Mode == Stepped {
		return steppedScore(trendPct)
	}
	band := e.p.BandPct
	switch {
	case trendPct <= -band:
		return 0
	case trendPct >= band:
		return 100
	default:
		return (trendPct + band) / (2 * band) * 100
	}
}

func steppedScore(trendPct float64) float64 {
	switch {
	case trendPct > 2:
		return 90
	case trendPct > 0.5:
		return 70
	case trendPct > -0.5:
		return 50
	case trendPct > -2:
		return 30
	default:
		return 10
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
