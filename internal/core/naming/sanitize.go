// Package naming derives output artifact names from extracted titles.
package naming

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/certextract/internal/core/domain"
)

var (
	disallowed     = regexp.MustCompile(`[^\p{L}\p{N}\s\-_().]`)
	trailingSigner = regexp.MustCompile(`\s+A$`)
)

// Sanitize strips diacritics, replaces unsafe characters with underscores
// and drops the trailing " A" left over from some signer lines.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	out := strings.TrimSpace(disallowed.ReplaceAllString(stripped, "_"))
	for trailingSigner.MatchString(out) {
		out = trailingSigner.ReplaceAllString(out, "")
	}
	return out
}

// BaseName picks the spreadsheet name for a batch: the title of a single
// titled result, otherwise the consolidated name of the format.
func BaseName(format domain.DocumentFormat, successes []domain.Outcome) string {
	if len(successes) == 1 && successes[0].Result != nil {
		if title := strings.TrimSpace(successes[0].Result.Title); title != "" {
			return title
		}
	}
	return format.ConsolidatedName()
}

// SpreadsheetFileName returns the sanitized .xlsx name for base.
func SpreadsheetFileName(base string) string {
	name := Sanitize(base)
	if name == "" {
		name = Sanitize(domain.FormatUnknown.ConsolidatedName())
	}
	return name + ".xlsx"
}

// ContentDisposition builds an attachment header value that survives
// non-ASCII names.
func ContentDisposition(fileName string) string {
	return `attachment; filename*=UTF-8''` + url.PathEscape(fileName)
}
