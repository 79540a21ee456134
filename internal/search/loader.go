package search

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Symbol is one row of the local symbol list.
type Symbol struct {
	Ticker   string
	Name     string
	Exchange string
}

// LoadSymbols reads a CSV of Symbol,Name,Exchange rows. A header row starting with "Symbol" is skipped.
func LoadSymbols(filePath string) ([]Symbol, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSymbols(f)
}

func ReadSymbols(r io.Reader) ([]Symbol, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(records[0][0], "Symbol") {
		records = records[1:]
	}

	symbols := make([]Symbol, 0, len(records))
	for _, record := range records {
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		s := Symbol{
			Ticker: strings.ToUpper(strings.TrimSpace(record[0])),
			Name:   strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			s.Exchange = strings.TrimSpace(record[2])
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}
