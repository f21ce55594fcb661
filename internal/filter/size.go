package filter

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = map[byte]int64{
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize parses a human-readable size into bytes. Suffixes K, M, G and T
// are powers of 1024 and may be followed by B or iB ("10M", "10MB", "10MiB").
// A bare number or a trailing B alone means bytes.
func ParseSize(s string) (int64, error) {
	orig := s
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "IB")
	s = strings.TrimSuffix(s, "B")
	if s == "" {
		return 0, fmt.Errorf("invalid size: %q", orig)
	}

	multiplier := int64(1)
	if m, ok := sizeUnits[s[len(s)-1]]; ok {
		multiplier = m
		s = s[:len(s)-1]
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", orig)
		}
		return n * multiplier, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", orig)
	}
	return int64(f * float64(multiplier)), nil
}
