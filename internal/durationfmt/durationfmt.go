// Package durationfmt parses the small `<number><unit>` duration strings
// used for token TTLs (token.Codec.Sign), where unit is one of
// s|m|h|d. time.ParseDuration already understands s/m/h; this package adds
// the day suffix on top.
package durationfmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse parses a duration string with suffix s, m, h, or d (e.g. "30s",
// "15m", "2h", "7d"). A "d" value must be a whole number of days; s, m and h
// values go to time.ParseDuration, so forms like "1.5h" or "1h30m" are also
// accepted. It returns an error if the string has no recognized suffix or
// its numeric part does not parse.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration string is empty")
	}

	if strings.HasSuffix(s, "d") {
		numPart := strings.TrimSuffix(s, "d")
		n, err := strconv.ParseInt(numPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	for _, suffix := range []string{"s", "m", "h"} {
		if strings.HasSuffix(s, suffix) {
			d, err := time.ParseDuration(s)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			return d, nil
		}
	}

	return 0, fmt.Errorf("duration %q has no recognized suffix (expected s, m, h, or d)", s)
}
