package moderation

import (
	"regexp"
	"strings"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	markupTag   = regexp.MustCompile(`<[^>]*>`)
	entities    = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
)

// StripMarkup drops script blocks and tags from the trimmed text.
func StripMarkup(content string) string {
	stripped := scriptBlock.ReplaceAllString(strings.TrimSpace(content), "")
	return markupTag.ReplaceAllString(stripped, "")
}

// EscapeHTML encodes the characters a browser could read as markup.
func EscapeHTML(content string) string {
	return entities.Replace(content)
}
