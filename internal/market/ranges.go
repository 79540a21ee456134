package market

import (
	"strings"
	"time"

	"stock-advisor/internal/apperr"
)

// Range is a chart window accepted by /history.
type Range string

const (
	Range5D  Range = "5D"
	Range1M  Range = "1M"
	Range6M  Range = "6M"
	Range1Y  Range = "1Y"
	RangeYTD Range = "YTD"
	Range5Y  Range = "5Y"
	RangeMax Range = "MAX"

	DefaultRange = Range1Y
)

var rangeAliases = map[string]Range{
	"5D": Range5D, "5DAY": Range5D,
	"1M": Range1M, "1MO": Range1M,
	"6M": Range6M, "6MO": Range6M,
	"1Y": Range1Y, "12MO": Range1Y,
	"YTD": RangeYTD,
	"5Y":  Range5Y,
	"MAX": RangeMax,
}

// ParseRange accepts the UI ranges and the yfinance period spellings, case-insensitively.
// An empty string selects DefaultRange.
func ParseRange(s string) (Range, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultRange, nil
	}
	if r, ok := rangeAliases[s]; ok {
		return r, nil
	}
	return "", apperr.InvalidInput("history", "unsupported range %q (want 1M, 1Y, YTD or Max)", s)
}

// maxEpoch is the earliest start used for RangeMax.
var maxEpoch = time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)

// Window returns the [from, to] interval the range covers, ending at now.
func (r Range) Window(now time.Time) (time.Time, time.Time) {
	switch r {
	case Range5D:
		return now.AddDate(0, 0, -7), now
	case Range1M:
		return now.AddDate(0, -1, 0), now
	case Range6M:
		return now.AddDate(0, -6, 0), now
	case RangeYTD:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), now
	case Range5Y:
		return now.AddDate(-5, 0, 0), now
	case RangeMax:
		return maxEpoch, now
	default:
		return now.AddDate(-1, 0, 0), now
	}
}
