package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// SQLite persists analyses to a SQLite database.
type SQLite struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

var (
	_ interfaces.Recorder = (*SQLite)(nil)
	_ Maintainer          = (*SQLite)(nil)
)

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers (CLI, dashboards) query while the server writes.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLite{db: db, now: time.Now}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(ctx, "SQLite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id              TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			ticker          TEXT NOT NULL,
			last_close      REAL,
			predicted_close REAL,
			price_score     REAL,
			sentiment_score INTEGER,
			final_score     REAL,
			label           TEXT,
			payload         TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker ON analyses(ticker)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s, err)
		}
	}
	return nil
}

func (r *SQLite) Record(ctx context.Context, res types.RecommendationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := newEntry(r.now(), res)
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO analyses (id, timestamp, ticker, last_close, predicted_close, price_score,
			sentiment_score, final_score, label, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RecordedAt.Unix(), res.Ticker, res.LastClose, res.PredictedClose, res.PriceScore,
		res.SentimentScore, res.FinalScore, string(res.Label), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for ticker, newest first. An empty ticker matches all.
func (r *SQLite) Recent(ctx context.Context, ticker string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, payload FROM analyses
		 WHERE (? = '' OR ticker = ?)
		 ORDER BY timestamp DESC, rowid DESC LIMIT ?`, ticker, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			ts      int64
			payload string
		)
		if err := rows.Scan(&e.ID, &ts, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &e.Result); err != nil {
			return nil, fmt.Errorf("decode analysis %s: %w", e.ID, err)
		}
		e.RecordedAt = time.Unix(ts, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Maintain deletes rows older than retentionDays.
func (r *SQLite) Maintain(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().AddDate(0, 0, -retentionDays).Unix()
	res, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *SQLite) Close() error {
	return r.db.Close()
}
