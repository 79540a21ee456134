package recorder

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func sampleResult(ticker string) types.RecommendationResult {
	return types.RecommendationResult{
		Ticker:         ticker,
		PredictedClose: 105,
		LastClose:      100,
		PriceScore:     75,
		SentimentScore: 60,
		FinalScore:     67.5,
		Label:          types.Buy,
		GeneratedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestJSONLRecordAppendsDailyFile(t *testing.T) {
	dir := t.TempDir()
	j := NewJSONL(dir)
	j.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	require.NoError(t, j.Record(ctx, sampleResult("AAPL")))
	require.NoError(t, j.Record(ctx, sampleResult("MSFT")))

	f, err := os.Open(filepath.Join(dir, "2024-03-01.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)
	assert.Equal(t, "AAPL", entries[0].Result.Ticker)
	assert.Equal(t, "MSFT", entries[1].Result.Ticker)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, types.Buy, entries[0].Result.Label)
}

func TestJSONLCompressOlder(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	j := NewJSONL(dir)
	j.now = func() time.Time { return now }

	old := filepath.Join(dir, "2024-03-01.jsonl")
	fresh := filepath.Join(dir, "2024-03-19.jsonl")
	require.NoError(t, os.WriteFile(old, []byte(`{"id":"a"}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte(`{"id":"b"}`+"\n"), 0o644))
	require.NoError(t, os.Chtimes(old, now.AddDate(0, 0, -19), now.AddDate(0, 0, -19)))
	require.NoError(t, os.Chtimes(fresh, now.AddDate(0, 0, -1), now.AddDate(0, 0, -1)))

	n, err := j.Maintain(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)

	gz, err := os.Open(old + ".gz")
	require.NoError(t, err)
	defer gz.Close()
	zr, err := gzip.NewReader(gz)
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"a"}`+"\n", string(b))

	// second pass finds nothing left to do
	n, err = j.Maintain(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJSONLCompressOlderMissingDir(t *testing.T) {
	j := NewJSONL(filepath.Join(t.TempDir(), "absent"))
	n, err := j.CompressOlder(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJSONLRetentionDisabled(t *testing.T) {
	j := NewJSONL(t.TempDir())
	n, err := j.Maintain(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
