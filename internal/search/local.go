package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

var resultFields = []string{"symbol", "name", "exchange"}

// LocalIndex answers symbol searches from a bleve index built from a symbol list.
// It needs no network access and backs search when no Finnhub key is configured.
type LocalIndex struct {
	index      bleve.Index
	maxResults int
}

var _ interfaces.SymbolSearcher = (*LocalIndex)(nil)

// NewLocalIndex opens the index at path, building it from symbols when it does not exist yet.
// An empty path keeps the index in memory.
func NewLocalIndex(ctx context.Context, path string, symbols []Symbol, maxResults int) (*LocalIndex, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	var (
		index bleve.Index
		err   error
	)
	if path == "" {
		index, err = bleve.NewMemOnly(bleve.NewIndexMapping())
	} else {
		index, err = bleve.Open(path)
		if err == nil {
			logger.Info(ctx, "Opened existing symbol index", "path", path)
			return &LocalIndex{index: index, maxResults: maxResults}, nil
		}
		if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return nil, fmt.Errorf("failed to open index: %w", err)
		}
		index, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for _, s := range symbols {
		id := s.Ticker
		if s.Exchange != "" {
			id = s.Ticker + "-" + s.Exchange
		}
		doc := map[string]interface{}{
			"symbol":   s.Ticker,
			"name":     s.Name,
			"exchange": s.Exchange,
		}
		if err := batch.Index(id, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to add to batch: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}
	logger.Info(ctx, "Indexed symbols", "count", len(symbols), "path", path)

	return &LocalIndex{index: index, maxResults: maxResults}, nil
}

// Search ranks exact ticker matches first, then ticker prefixes, then company-name matches.
func (l *LocalIndex) Search(ctx context.Context, q string) ([]types.SymbolMatch, error) {
	if tickers, ok := splitList(q); ok {
		return l.bySymbols(tickers)
	}

	term := strings.ToLower(strings.TrimSpace(q))

	exact := bleve.NewTermQuery(term)
	exact.SetField("symbol")
	exact.SetBoost(10.0)

	prefix := bleve.NewPrefixQuery(term)
	prefix.SetField("symbol")
	prefix.SetBoost(5.0)

	name := bleve.NewMatchQuery(q)
	name.SetField("name")
	name.SetBoost(3.0)

	wildcardName := bleve.NewWildcardQuery("*" + term + "*")
	wildcardName.SetField("name")
	wildcardName.SetBoost(1.5)

	return l.run(bleve.NewDisjunctionQuery(exact, prefix, name, wildcardName), l.maxResults)
}

func (l *LocalIndex) bySymbols(tickers []string) ([]types.SymbolMatch, error) {
	if len(tickers) == 0 {
		return []types.SymbolMatch{}, nil
	}
	out := make([]types.SymbolMatch, 0, len(tickers))
	for _, t := range tickers {
		if len(out) >= l.maxResults {
			break
		}
		q := bleve.NewTermQuery(strings.ToLower(t))
		q.SetField("symbol")
		hits, err := l.run(q, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, hits...)
	}
	return out, nil
}

func (l *LocalIndex) run(q query.Query, size int) ([]types.SymbolMatch, error) {
	req := bleve.NewSearchRequest(q)
	req.Fields = resultFields
	req.Size = size

	res, err := l.index.Search(req)
	if err != nil {
		return nil, apperr.Upstream(stage, "local-index", err)
	}

	getString := func(fields map[string]interface{}, key string) string {
		if val, ok := fields[key].(string); ok {
			return val
		}
		return ""
	}

	out := make([]types.SymbolMatch, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, types.SymbolMatch{
			Ticker:   getString(hit.Fields, "symbol"),
			Name:     getString(hit.Fields, "name"),
			Exchange: getString(hit.Fields, "exchange"),
		})
	}
	return out, nil
}

func (l *LocalIndex) Close() error {
	return l.index.Close()
}
