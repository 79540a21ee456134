package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/store"
)

const sampleCSV = `Symbol,Name,Exchange
AAPL,Apple Inc,NASDAQ
MSFT,Microsoft Corporation,NASDAQ
RELIANCE.NS,Reliance Industries Limited,NSE
TCS.NS,Tata Consultancy Services Limited,NSE
`

func sampleIndex(t *testing.T) *LocalIndex {
	t.Helper()
	symbols, err := ReadSymbols(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	idx, err := NewLocalIndex(context.Background(), "", symbols, 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestReadSymbols(t *testing.T) {
	symbols, err := ReadSymbols(strings.NewReader(sampleCSV + "\n,missing ticker,NSE\nGOOG,Alphabet\n"))
	require.NoError(t, err)
	require.Len(t, symbols, 5)
	assert.Equal(t, Symbol{Ticker: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ"}, symbols[0])
	assert.Equal(t, Symbol{Ticker: "GOOG", Name: "Alphabet"}, symbols[4])
}

func TestLoadSymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	symbols, err := LoadSymbols(path)
	require.NoError(t, err)
	assert.Len(t, symbols, 4)

	_, err = LoadSymbols(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLocalSearchByName(t *testing.T) {
	matches, err := sampleIndex(t).Search(context.Background(), "apple")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "AAPL", matches[0].Ticker)
	assert.Equal(t, "Apple Inc", matches[0].Name)
	assert.Equal(t, "NASDAQ", matches[0].Exchange)
}

func TestLocalSearchBySymbol(t *testing.T) {
	matches, err := sampleIndex(t).Search(context.Background(), "MSFT")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "MSFT", matches[0].Ticker)
}

func TestLocalSearchPartialName(t *testing.T) {
	matches, err := sampleIndex(t).Search(context.Background(), "consult")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "TCS.NS", matches[0].Ticker)
}

func TestLocalSearchNoMatch(t *testing.T) {
	matches, err := sampleIndex(t).Search(context.Background(), "zzzzqqq")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLocalPersistentIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.bleve")
	symbols, err := ReadSymbols(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	idx, err := NewLocalIndex(context.Background(), path, symbols, 10)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	// reopening ignores the symbol list and serves the stored index
	idx, err = NewLocalIndex(context.Background(), path, nil, 10)
	require.NoError(t, err)
	defer idx.Close()

	matches, err := idx.Search(context.Background(), "microsoft")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "MSFT", matches[0].Ticker)
}

func TestServiceEmptyQuery(t *testing.T) {
	svc := NewService(sampleIndex(t), "local", 0)
	matches, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestNewPicksBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	cfg := store.Default()
	cfg.Search.SymbolsCSV = path

	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", svc.Name())
	require.NoError(t, svc.Close())

	cfg.Secrets.FinnhubAPIKey = "k"
	svc, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "finnhub", svc.Name())
	assert.NoError(t, svc.Close())
}
