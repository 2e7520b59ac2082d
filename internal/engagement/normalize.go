package engagement

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// A quote marker is "> " preceded by anything but a dash, so "--> "
	// style decorations are not mistaken for a quote.
	quoteMarker = regexp.MustCompile(`[^-]> `)
	boilerplate = regexp.MustCompile("Vaughn,\n*|Respectfully,\n\nDallas")
	blankRuns   = regexp.MustCompile(`\n\n+`)
)

// Normalize strips quoted text, salutation and signature boilerplate, and
// repeated blank lines from a message body. It never fails; text it cannot
// make sense of is returned as is.
func Normalize(body string) string {
	body = stripQuote(body)
	body = boilerplate.ReplaceAllString(body, "")
	return blankRuns.ReplaceAllString(body, "\n")
}

// stripQuote drops an opening quote block. The first rune of the rejoined
// text is dropped as well; downstream consumers have always seen it that way.
func stripQuote(body string) string {
	loc := quoteMarker.FindStringIndex(body)
	if loc == nil || loc[0] != 0 {
		return body
	}
	joined := strings.Join(quoteMarker.Split(body, -1), "")
	if joined == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(joined)
	return joined[size:]
}
