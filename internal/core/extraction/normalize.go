package extraction

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Normalize flattens line breaks so multi-line labels and values can be
// matched by single-line patterns. Every other rune is kept as is.
func Normalize(text string) string {
	return lineBreaks.Replace(text)
}
