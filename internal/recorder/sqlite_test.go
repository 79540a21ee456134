package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/store"
)

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	r, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "analyses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecordAndRecent(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, tk := range []string{"AAPL", "MSFT", "AAPL"} {
		at := base.Add(time.Duration(i) * time.Minute)
		r.now = func() time.Time { return at }
		require.NoError(t, r.Record(ctx, sampleResult(tk)))
	}

	all, err := r.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AAPL", all[0].Result.Ticker)
	assert.Equal(t, "MSFT", all[1].Result.Ticker)
	assert.Equal(t, base.Add(2*time.Minute), all[0].RecordedAt)

	aapl, err := r.Recent(ctx, "AAPL", 1)
	require.NoError(t, err)
	require.Len(t, aapl, 1)
	assert.Equal(t, 67.5, aapl[0].Result.FinalScore)
	assert.Equal(t, 60, aapl[0].Result.SentimentScore)
}

func TestSQLiteMaintainPrunes(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return now.AddDate(0, 0, -30) }
	require.NoError(t, r.Record(ctx, sampleResult("OLD")))
	r.now = func() time.Time { return now.AddDate(0, 0, -1) }
	require.NoError(t, r.Record(ctx, sampleResult("NEW")))

	r.now = func() time.Time { return now }
	n, err := r.Maintain(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := r.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "NEW", left[0].Result.Ticker)
}

func TestSQLiteReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyses.db")
	ctx := context.Background()

	r, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r.Record(ctx, sampleResult("INFY.NS")))
	require.NoError(t, r.Close())

	r, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Recent(ctx, "INFY.NS", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewSelectsRecorder(t *testing.T) {
	ctx := context.Background()
	cfg := store.Default()

	cfg.Recorder.Kind = "NONE"
	r, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, r)

	cfg.Recorder.Kind = "JSONL"
	cfg.Recorder.Dir = t.TempDir()
	r, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &JSONL{}, r)

	cfg.Recorder.Kind = "SQLITE"
	cfg.Recorder.Path = filepath.Join(t.TempDir(), "a.db")
	r, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, r)
	require.NoError(t, r.Close())

	cfg.Recorder.Kind = "BOGUS"
	_, err = New(ctx, cfg)
	assert.Error(t, err)
}
