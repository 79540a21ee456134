package recorder

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Noop is used when recording is disabled.
type Noop struct{}

var _ interfaces.Recorder = Noop{}

func NewNoop() Noop { return Noop{} }

func (Noop) Record(context.Context, types.RecommendationResult) error { return nil }
func (Noop) Close() error                                            { return nil }
