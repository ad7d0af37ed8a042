package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidDurationFormat is returned for lifetime strings that are not of
// the form <integer><unit> with unit one of s, m, h or d.
var ErrInvalidDurationFormat = errors.New("invalid duration format")

// ParseLifetime parses token lifetime expressions like "30s", "15m", "12h" or
// "7d". Unitless numbers and unknown unit letters are rejected.
func ParseLifetime(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, s)
	}

	numPart, unit := s[:len(s)-1], s[len(s)-1]
	for i := 0; i < len(numPart); i++ {
		if numPart[i] < '0' || numPart[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, s)
		}
	}
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, s)
	}

	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, s)
	}
}
