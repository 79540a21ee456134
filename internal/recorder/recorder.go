// Package recorder keeps an audit trail of produced recommendations.
package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// Entry is one recorded analysis.
type Entry struct {
	ID         string                     `json:"id"`
	RecordedAt time.Time                  `json:"recordedAt"`
	Result     types.RecommendationResult `json:"result"`
}

func newEntry(now time.Time, r types.RecommendationResult) Entry {
	return Entry{ID: uuid.NewString(), RecordedAt: now.UTC(), Result: r}
}

// Maintainer is implemented by recorders that need periodic housekeeping.
// Maintain returns how many files or rows it touched.
type Maintainer interface {
	Maintain(ctx context.Context, retentionDays int) (int, error)
}

// New opens the configured recorder.
func New(ctx context.Context, cfg *store.Config) (interfaces.Recorder, error) {
	switch cfg.Recorder.Kind {
	case "JSONL":
		return NewJSONL(cfg.Recorder.Dir), nil
	case "SQLITE":
		return NewSQLite(ctx, cfg.Recorder.Path)
	case "NONE":
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown recorder kind %q", cfg.Recorder.Kind)
	}
}
