package market

import (
	"regexp"
	"strings"

	"stock-advisor/internal/apperr"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^&]{0,19}$`)

// NormalizeTicker upper-cases and validates a user supplied symbol.
func NormalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", apperr.InvalidInput("request", "ticker is required")
	}
	if !tickerPattern.MatchString(t) {
		return "", apperr.InvalidInput("request", "malformed ticker %q", s)
	}
	return t, nil
}
