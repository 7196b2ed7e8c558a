package extraction

import (
	"regexp"
	"strings"
)

// Search returns the trimmed first capture group of the first match.
// ok is false when nothing matched or the group did not participate.
func Search(text string, pattern *regexp.Regexp) (string, bool) {
	if pattern == nil || pattern.NumSubexp() < 1 {
		return "", false
	}
	loc := pattern.FindStringSubmatchIndex(text)
	if loc == nil || loc[2] < 0 {
		return "", false
	}
	return strings.TrimSpace(text[loc[2]:loc[3]]), true
}

// searchOr is Search with a default for absent values.
func searchOr(text string, pattern *regexp.Regexp, fallback string) string {
	if v, ok := Search(text, pattern); ok {
		return v
	}
	return fallback
}

func mustPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + expr)
}
