package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Scoring.BandPct)
	assert.Equal(t, 0.5, cfg.Scoring.PriceWeight)
	assert.Equal(t, 40.0, cfg.Scoring.Low)
	assert.Equal(t, 60.0, cfg.Scoring.High)
	assert.Equal(t, 90, cfg.Price.LookbackDays)
	assert.Equal(t, 60, cfg.Predictor.Window)
	assert.Equal(t, 5, cfg.News.MaxArticles)
	assert.Equal(t, "OLLAMA", cfg.LLM.Narrative.Provider)
}

func TestLoadConfigOverridesAndNormalizes(t *testing.T) {
	p := writeConfig(t, `
scoring:
  trend_mode: stepped
  price_weight: 0.4
  sentiment_weight: 0.6
  low: 40
  high: 70
price:
  provider: static
timeouts:
  llm: 5s
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "STEPPED", cfg.Scoring.TrendMode)
	assert.Equal(t, 0.4, cfg.Scoring.PriceWeight)
	assert.Equal(t, 70.0, cfg.Scoring.High)
	assert.Equal(t, "STATIC", cfg.Price.Provider)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.LLM)
	// untouched keys keep their defaults
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Price)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("LLM_ENDPOINT", "http://ollama:11434")
	t.Setenv("MODEL_ENDPOINT", "http://model:8501")
	t.Setenv("ADVISOR_ADDR", ":9090")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "news-key", cfg.Secrets.NewsAPIKey)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.Narrative.Endpoint)
	assert.Equal(t, "REMOTE", cfg.Predictor.Backend)
	assert.Equal(t, "http://model:8501", cfg.Predictor.Endpoint)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"weights do not sum to one", "scoring:\n  price_weight: 0.7\n  sentiment_weight: 0.7\n"},
		{"low not below high", "scoring:\n  low: 60\n  high: 60\n"},
		{"unknown price provider", "price:\n  provider: bloomberg\n"},
		{"unknown llm provider", "llm:\n  sentiment:\n    provider: bard\n"},
		{"non-positive band", "scoring:\n  band_pct: 0\n"},
		{"remote predictor without endpoint", "predictor:\n  backend: remote\n"},
		{"kite without credentials", "price:\n  provider: kite\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "scoring: [unterminated"))
	require.Error(t, err)
}
