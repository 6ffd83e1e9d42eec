package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newEmbeddedSanitizer(t *testing.T) *Sanitizer {
	data, err := NewCensoredLoader(Dictionaries).LoadAll(DictionariesDir)
	require.NoError(t, err)
	sanitizer, err := NewSanitizer(logs.GetLoggerFromLevel(slog.LevelDebug), data, replacementChar)
	require.NoError(t, err)
	return sanitizer
}

func TestSanitizer_Censors_Known_Languages(t *testing.T) {
	req := require.New(t)
	sanitizer := newEmbeddedSanitizer(t)

	english := sanitizer.Sanitize("I really think that the weather today is shit and everybody knows it")
	req.True(english.Sanitized())
	req.Contains(english.Content, "is **** and")

	french := sanitizer.Sanitize("Je pense vraiment que cette journée est une merde complète pour tout le monde")
	req.True(french.Sanitized())
	req.Contains(french.Content, "une ***** complète")
}

func TestSanitizer_Clean_Content(t *testing.T) {
	req := require.New(t)
	sanitizer := newEmbeddedSanitizer(t)

	result := sanitizer.Sanitize("Hello everyone, the meeting starts at noon in the main room")

	req.False(result.Sanitized())
	req.Equal("Hello everyone, the meeting starts at noon in the main room", result.Content)
}

func TestSanitizer_Falls_Back_To_Every_Word(t *testing.T) {
	req := require.New(t)
	data := &CensoredData{
		Words:      []string{"badger", "blaireau"},
		Languages:  []string{"en"},
		ByLanguage: map[string][]string{"en": {"badger"}},
	}
	sanitizer, err := NewSanitizer(logs.GetLoggerFromLevel(slog.LevelDebug), data, replacementChar)
	req.NoError(err)

	// Given a language without dictionary
	result := sanitizer.Sanitize("le blaireau mange des champignons dans la forêt ce soir avec ses amis")

	req.True(result.Sanitized())
	req.Equal([]string{"blaireau"}, result.Words)
	req.Contains(result.Content, "le ******** mange")
}

func TestSanitizer_Removes_Markup(t *testing.T) {
	req := require.New(t)
	sanitizer := newEmbeddedSanitizer(t)

	// When the content carries a script and a tag
	result := sanitizer.Sanitize(`<script>alert('x')</script>Hello <b>everyone</b>, see you at noon in the main room`)

	// Then only the text is kept and the content counts as sanitized
	req.True(result.Sanitized())
	req.Empty(result.Words)
	req.Equal("Hello everyone, see you at noon in the main room", result.Content)
}

func TestSanitizer_Escapes_After_Censoring(t *testing.T) {
	req := require.New(t)
	sanitizer := newEmbeddedSanitizer(t)

	result := sanitizer.Sanitize("I really think that the weather today is shit & everybody knows it")

	req.True(result.Sanitized())
	req.Equal([]string{"shit"}, result.Words)
	req.Contains(result.Content, "is **** &amp; everybody")
}
