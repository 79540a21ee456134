package types

import (
	"strings"
	"time"
)

// PricePoint is one daily OHLCV bar.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PredictionResult is the model's next-day close estimate and the bars it was computed from.
type PredictionResult struct {
	PredictedClose float64      `json:"predictedClose"`
	Basis          []PricePoint `json:"-"`
	Model          string       `json:"model,omitempty"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
}

type SentimentResult struct {
	Score int    `json:"score"`
	Raw   string `json:"-"`
}

// Label is the categorical recommendation.
type Label string

const (
	Buy  Label = "Buy"
	Hold Label = "Hold"
	Sell Label = "Sell"
)

// Score is the output of the recommendation engine before any narrative is attached.
type Score struct {
	PriceTrendPct float64 `json:"priceTrendPct"`
	PriceScore    float64 `json:"priceScore"`
	FinalScore    float64 `json:"finalScore"`
	Label         Label   `json:"label"`
}

// RecommendationResult is the terminal artifact of an analysis request.
type RecommendationResult struct {
	Ticker          string    `json:"ticker"`
	PredictedClose  float64   `json:"predictedClose"`
	LastClose       float64   `json:"lastClose"`
	PriceTrendPct   float64   `json:"priceTrendPct"`
	PriceScore      float64   `json:"priceScore"`
	SentimentScore  int       `json:"sentimentScore"`
	FinalScore      float64   `json:"finalScore"`
	Label           Label     `json:"label"`
	NewsSummary     string    `json:"newsSummary"`
	Explanation     string    `json:"explanation"`
	ExplanationHTML string    `json:"explanationHtml,omitempty"`
	NewsCount       int       `json:"newsCount"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// ExplanationInput carries everything the narrative step may cite.
type ExplanationInput struct {
	Ticker         string
	LastClose      float64
	PredictedClose float64
	PriceScore     float64
	SentimentScore int
	FinalScore     float64
	Label          Label
	NewsText       string
}

type SymbolMatch struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Logo     string `json:"logo,omitempty"`
}

// Fundamentals holds valuation and risk figures; nil fields were unavailable upstream.
type Fundamentals struct {
	Ticker       string         `json:"ticker"`
	PERatio      *float64       `json:"peRatio"`
	PBRatio      *float64       `json:"pbRatio"`
	Risk         *float64       `json:"risk"`
	GrahamNumber *float64       `json:"grahamNumber"`
	Daily        DailyStats     `json:"daily"`
	Technical    TechnicalStats `json:"technical"`
}

type DailyStats struct {
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Volume *int64   `json:"volume"`
}

type TechnicalStats struct {
	SMA50 *float64 `json:"sma50"`
	RSI14 *float64 `json:"rsi14"`
}

// EquityQuote is the subset of a quote used for valuation metrics.
type EquityQuote struct {
	Symbol      string
	Name        string
	Price       float64
	Open        float64
	High        float64
	Low         float64
	Volume      int64
	TrailingPE  float64
	PriceToBook float64
	EPS         float64
	BookValue   float64
}

// NewsText flattens items into "title snippet" pairs joined by spaces, the form sent to language models.
func NewsText(items []NewsItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Snippet == "" {
			continue
		}
		parts = append(parts, it.Title+" "+it.Snippet)
	}
	return strings.Join(parts, " ")
}
