package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

// blockingSearcher waits for its context like a backend stuck behind a rate limiter.
type blockingSearcher struct{}

func (blockingSearcher) Search(ctx context.Context, q string) ([]types.SymbolMatch, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestServiceSearchIsBoundedByTimeout(t *testing.T) {
	svc := NewService(blockingSearcher{}, "blocking", 50*time.Millisecond)

	start := time.Now()
	_, err := svc.Search(context.Background(), "apple")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
