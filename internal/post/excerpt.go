package post

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultExcerptLength is the number of runes of content shown on a card.
const DefaultExcerptLength = 100

var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from s. The result is unescaped text, ready to be
// escaped once by the template that renders it.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Excerpt returns the first maxLen runes of the post's plain-text content,
// followed by "..." when anything was cut.
func (p Post) Excerpt(maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultExcerptLength
	}
	return Truncate(PlainText(p.Content), maxLen)
}

// Truncate cuts s to maxLen runes and appends an ellipsis if it was longer.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:maxLen]), " ") + "..."
}
