package moneyfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDollars converts a display money string such as "$12,345,678" into
// whole dollars. An empty or otherwise malformed figure is an error, it is
// never coerced to zero.
func ParseDollars(s string) (int64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty money figure %q", s)
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed money figure %q: %w", s, err)
	}
	return value, nil
}
