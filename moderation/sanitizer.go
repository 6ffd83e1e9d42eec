package moderation

import (
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Sanitization is the outcome of one Sanitize call.
// Escaped is set when markup was removed or encoded.
type Sanitization struct {
	Content  string
	Words    []string
	Language string
	Escaped  bool
}

func (s Sanitization) Sanitized() bool {
	return len(s.Words) > 0 || s.Escaped
}

// Sanitizer picks the dictionary of the detected language.
// Text whose language can't be reliably detected, or has no dictionary, is checked against every word.
type Sanitizer struct {
	log        *slog.Logger
	byLanguage map[string]*Moderator
	fallback   *Moderator
}

func NewSanitizer(log *slog.Logger, data *CensoredData, censoredChar rune) (*Sanitizer, error) {
	fallback, err := NewModerator(data.Words, censoredChar)
	if err != nil {
		return nil, err
	}
	byLanguage := make(map[string]*Moderator, len(data.ByLanguage))
	for lang, words := range data.ByLanguage {
		moderator, err := NewModerator(words, censoredChar)
		if err != nil {
			return nil, err
		}
		byLanguage[lang] = moderator
	}
	return &Sanitizer{log: log, byLanguage: byLanguage, fallback: fallback}, nil
}

// Sanitize removes markup, censors forbidden words on the plain text, then HTML-escapes the result.
func (s *Sanitizer) Sanitize(content string) Sanitization {
	trimmed := strings.TrimSpace(content)
	plain := StripMarkup(trimmed)
	info := whatlanggo.Detect(plain)
	lang := info.Lang.Iso6391()

	moderator := s.fallback
	if specific, ok := s.byLanguage[lang]; ok && info.IsReliable() {
		moderator = specific
	}

	censored, words := moderator.Censor(plain)
	if len(words) > 0 {
		s.log.Debug("Content censored", "lang", lang, "words", len(words))
	}
	escaped := EscapeHTML(censored)
	return Sanitization{
		Content:  escaped,
		Words:    words,
		Language: lang,
		Escaped:  plain != trimmed || escaped != censored,
	}
}
