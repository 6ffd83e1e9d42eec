package moderation

import (
	"bufio"
	"bytes"
	"chat-relay/errors"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed censored/*.txt
var Dictionaries embed.FS

const DictionariesDir = "censored"

// CensoredData carries the loaded dictionaries. Each file name is an ISO 639-1 code.
type CensoredData struct {
	Words      []string
	Languages  []string
	ByLanguage map[string][]string
}

// CensoredLoader reads forbidden words from an embedded filesystem.
type CensoredLoader struct {
	fs fs.FS
}

func NewCensoredLoader(f fs.FS) *CensoredLoader {
	return &CensoredLoader{fs: f}
}

// LoadAll parses every .txt file of the directory as a language dictionary, one word per line.
func (l *CensoredLoader) LoadAll(dir string) (*CensoredData, error) {
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	data := &CensoredData{ByLanguage: make(map[string][]string)}
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".txt")

		content, err := fs.ReadFile(l.fs, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		// A scanner copes with both \n and \r\n line endings
		var words []string
		scanner := bufio.NewScanner(bytes.NewReader(content))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			words = append(words, line)
			uniqueWords[line] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		if len(words) == 0 {
			continue
		}
		data.Languages = append(data.Languages, lang)
		data.ByLanguage[lang] = words
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	data.Words = make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		data.Words = append(data.Words, w)
	}
	sort.Strings(data.Words)
	return data, nil
}
