package app

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxSymbolLength bounds accepted ticker length, exchange suffix included
const MaxSymbolLength = 20

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.&-]+$`)

// NormalizeSymbol trims and upper-cases a ticker and validates its characters.
// Exchange suffixes (RELIANCE.BSE) and ampersands (M&M) are allowed.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol is required", ErrInvalidSymbol)
	}
	if len(symbol) > MaxSymbolLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidSymbol, symbol, MaxSymbolLength)
	}
	if !symbolPattern.MatchString(symbol) {
		return "", fmt.Errorf("%w: %q contains unsupported characters", ErrInvalidSymbol, symbol)
	}
	return symbol, nil
}
