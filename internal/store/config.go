package store

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LLMConfig selects and tunes one language-model backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"oneof=OLLAMA GEMINI CLAUDE OPENAI NOOP"`
	Model       string  `yaml:"model"`
	Endpoint    string  `yaml:"endpoint" validate:"omitempty,url"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

type Config struct {
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
		// RequestTimeout bounds a whole /analyze request.
		RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
		CORSOrigin     string        `yaml:"cors_origin"`
	} `yaml:"server"`
	Scoring struct {
		TrendMode       string  `yaml:"trend_mode" validate:"oneof=LINEAR STEPPED"`
		BandPct         float64 `yaml:"band_pct" validate:"gt=0"`
		PriceWeight     float64 `yaml:"price_weight" validate:"gte=0,lte=1"`
		SentimentWeight float64 `yaml:"sentiment_weight" validate:"gte=0,lte=1"`
		Low             float64 `yaml:"low" validate:"gte=0,lte=100"`
		High            float64 `yaml:"high" validate:"gte=0,lte=100"`
	} `yaml:"scoring"`
	Price struct {
		Provider     string `yaml:"provider" validate:"oneof=YAHOO FINANCEGO KITE STATIC"`
		BaseURL      string `yaml:"base_url" validate:"omitempty,url"`
		LookbackDays int    `yaml:"lookback_days" validate:"gte=2"`
		Exchange     string `yaml:"exchange"`
	} `yaml:"price"`
	Predictor struct {
		Backend string `yaml:"backend" validate:"oneof=REMOTE LINEAR"`
		// Endpoint is a TensorFlow-Serving style REST root, e.g. http://localhost:8501.
		Endpoint       string `yaml:"endpoint" validate:"omitempty,url"`
		ModelName      string `yaml:"model_name"`
		Window         int    `yaml:"window" validate:"gte=2"`
		LinearLookback int    `yaml:"linear_lookback" validate:"gte=2"`
	} `yaml:"predictor"`
	News struct {
		Provider        string        `yaml:"provider" validate:"oneof=NEWSAPI SCRAPER"`
		BaseURL         string        `yaml:"base_url" validate:"omitempty,url"`
		MaxArticles     int           `yaml:"max_articles" validate:"gte=1,lte=100"`
		FallbackScraper bool          `yaml:"fallback_scraper"`
		CacheTTL        time.Duration `yaml:"cache_ttl" validate:"gte=0"`
		RatePerSecond   float64       `yaml:"rate_per_second" validate:"gte=0"`
	} `yaml:"news"`
	Search struct {
		Provider      string  `yaml:"provider" validate:"oneof=AUTO FINNHUB LOCAL"`
		BaseURL       string  `yaml:"base_url" validate:"omitempty,url"`
		MaxResults    int     `yaml:"max_results" validate:"gte=1,lte=50"`
		SymbolsCSV    string  `yaml:"symbols_csv"`
		IndexPath     string  `yaml:"index_path"`
		RatePerSecond float64 `yaml:"rate_per_second" validate:"gte=0"`
	} `yaml:"search"`
	LLM struct {
		Sentiment LLMConfig `yaml:"sentiment"`
		Narrative LLMConfig `yaml:"narrative"`
	} `yaml:"llm"`
	Recorder struct {
		Kind          string `yaml:"kind" validate:"oneof=JSONL SQLITE NONE"`
		Dir           string `yaml:"dir"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days" validate:"gte=0"`
		// Schedule is a six-field cron spec for compressing or pruning old analyses.
		Schedule string `yaml:"schedule"`
		// SummarySchedule writes the previous day's per-ticker CSV (JSONL only).
		SummarySchedule string `yaml:"summary_schedule"`
	} `yaml:"recorder"`
	Timeouts struct {
		Price   time.Duration `yaml:"price" validate:"gt=0"`
		News    time.Duration `yaml:"news" validate:"gt=0"`
		Predict time.Duration `yaml:"predict" validate:"gt=0"`
		LLM     time.Duration `yaml:"llm" validate:"gt=0"`
		Search  time.Duration `yaml:"search" validate:"gt=0"`
	} `yaml:"timeouts"`

	Secrets Secrets `yaml:"-"`
}

// Secrets are read from the environment only.
type Secrets struct {
	NewsAPIKey      string
	FinnhubAPIKey   string
	GeminiAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	KiteAPIKey      string
	KiteAccessToken string
}

// Default returns a configuration that runs against the public upstreams with a local Ollama.
func Default() *Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Server.RequestTimeout = 2 * time.Minute

	c.Scoring.TrendMode = "LINEAR"
	c.Scoring.BandPct = 10
	c.Scoring.PriceWeight = 0.5
	c.Scoring.SentimentWeight = 0.5
	c.Scoring.Low = 40
	c.Scoring.High = 60

	c.Price.Provider = "YAHOO"
	c.Price.LookbackDays = 90
	c.Price.Exchange = "NSE"

	c.Predictor.Backend = "LINEAR"
	c.Predictor.ModelName = "lstm"
	c.Predictor.Window = 60
	c.Predictor.LinearLookback = 20

	c.News.Provider = "NEWSAPI"
	c.News.MaxArticles = 5
	c.News.FallbackScraper = true
	c.News.RatePerSecond = 1

	c.Search.Provider = "AUTO"
	c.Search.MaxResults = 10
	c.Search.SymbolsCSV = "data/symbols.csv"
	c.Search.RatePerSecond = 1

	c.LLM.Sentiment = LLMConfig{Provider: "GEMINI", Model: "gemini-flash-lite-latest"}
	c.LLM.Narrative = LLMConfig{Provider: "OLLAMA", Model: "phi3", Endpoint: "http://localhost:11434"}

	c.Recorder.Kind = "JSONL"
	c.Recorder.Dir = "logs/analyses"
	c.Recorder.Path = "data/analyses.db"
	c.Recorder.RetentionDays = 7
	c.Recorder.Schedule = "0 30 2 * * *"
	c.Recorder.SummarySchedule = "0 5 0 * * *"

	c.Timeouts.Price = 15 * time.Second
	c.Timeouts.News = 15 * time.Second
	c.Timeouts.Predict = 20 * time.Second
	c.Timeouts.LLM = 60 * time.Second
	c.Timeouts.Search = 10 * time.Second
	return &c
}

// LoadConfig reads path (missing file means defaults), applies environment overrides and validates.
func LoadConfig(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	c.applyEnv()
	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.Secrets = Secrets{
		NewsAPIKey:      os.Getenv("NEWS_API_KEY"),
		FinnhubAPIKey:   os.Getenv("FINNHUB_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		KiteAPIKey:      os.Getenv("KITE_API_KEY"),
		KiteAccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
	}
	if v := os.Getenv("LLM_ENDPOINT"); v != "" {
		c.LLM.Narrative.Endpoint = v
		if c.LLM.Sentiment.Provider == "OLLAMA" {
			c.LLM.Sentiment.Endpoint = v
		}
	}
	if v := os.Getenv("MODEL_ENDPOINT"); v != "" {
		c.Predictor.Endpoint = v
		c.Predictor.Backend = "REMOTE"
	}
	if v := os.Getenv("ADVISOR_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) normalize() {
	up := func(s *string) { *s = strings.ToUpper(strings.TrimSpace(*s)) }
	up(&c.Scoring.TrendMode)
	up(&c.Price.Provider)
	up(&c.Predictor.Backend)
	up(&c.News.Provider)
	up(&c.Search.Provider)
	up(&c.LLM.Sentiment.Provider)
	up(&c.LLM.Narrative.Provider)
	up(&c.Recorder.Kind)
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if math.Abs(c.Scoring.PriceWeight+c.Scoring.SentimentWeight-1) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1, got %.3f + %.3f", c.Scoring.PriceWeight, c.Scoring.SentimentWeight)
	}
	if c.Scoring.Low >= c.Scoring.High {
		return fmt.Errorf("scoring.low (%.1f) must be below scoring.high (%.1f)", c.Scoring.Low, c.Scoring.High)
	}
	if c.Predictor.Backend == "REMOTE" && c.Predictor.Endpoint == "" {
		return errors.New("predictor.endpoint is required when predictor.backend is REMOTE")
	}
	if c.Price.Provider == "KITE" && (c.Secrets.KiteAPIKey == "" || c.Secrets.KiteAccessToken == "") {
		return errors.New("KITE_API_KEY and KITE_ACCESS_TOKEN are required when price.provider is KITE")
	}
	if c.Search.Provider == "FINNHUB" && c.Secrets.FinnhubAPIKey == "" {
		return errors.New("FINNHUB_API_KEY is required when search.provider is FINNHUB")
	}
	if c.Recorder.Kind == "SQLITE" && c.Recorder.Path == "" {
		return errors.New("recorder.path is required when recorder.kind is SQLITE")
	}
	return nil
}
