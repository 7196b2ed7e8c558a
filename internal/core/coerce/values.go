// Package coerce converts extracted string values into typed storage values.
package coerce

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)`)
)

// Int parses the leading integer of raw; anything unparseable is 0.
func Int(raw string) int64 {
	m := intPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Float parses the leading decimal number of raw; anything unparseable is 0.
func Float(raw string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// Bit is true only for "x" or "1", case-insensitively.
func Bit(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "x", "1":
		return true
	default:
		return false
	}
}
