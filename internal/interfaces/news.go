package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

type NewsProvider interface {
	News(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error)
	Name() string
}
