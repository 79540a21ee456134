package analysisobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

type stubAnalyzer struct {
	err error
}

func (s stubAnalyzer) Analyze(ctx context.Context, ticker string) (types.RecommendationResult, error) {
	if s.err != nil {
		return types.RecommendationResult{}, s.err
	}
	return types.RecommendationResult{Ticker: ticker, Label: types.Hold, FinalScore: 50}, nil
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestFailureLevelFollowsErrorKind(t *testing.T) {
	cases := []struct {
		err   error
		level string
		msg   string
	}{
		{apperr.InvalidTicker("price", "ZZZZ", errors.New("no price history")), "WARN", "Analysis rejected"},
		{apperr.InvalidInput("scoring", "last close must be positive, got %v", -1.0), "WARN", "Analysis rejected"},
		{apperr.Upstream("news", "newsapi", errors.New("503")), "ERROR", "Analysis failed"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "json", Output: &buf}))

		_, err := Wrap(stubAnalyzer{err: tc.err}).Analyze(context.Background(), "ZZZZ")
		require.Error(t, err)

		line := lastLine(t, &buf)
		assert.Equal(t, tc.level, line["level"])
		assert.Equal(t, tc.msg, line["msg"])
		assert.Equal(t, string(apperr.KindOf(tc.err)), line["kind"])
	}
}

func TestSuccessLogsLabel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "json", Output: &buf}))

	res, err := Wrap(stubAnalyzer{}).Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Ticker)

	line := lastLine(t, &buf)
	assert.Equal(t, "Analysis completed", line["msg"])
	assert.Equal(t, "Hold", line["label"])
}
