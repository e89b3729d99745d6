package tabular

import (
	"fmt"
	"path/filepath"
	"recordscrape/lib/textutil"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// SuggestColumn returns the header column most similar to name. ok is false
// when nothing in the header resembles it.
func SuggestColumn(header []string, name string) (suggestion string, ok bool) {
	target := textutil.NormalizeName(name)

	var best string
	var bestSimilarity float64
	for _, col := range header {
		similarity := matchr.JaroWinkler(textutil.NormalizeName(col), target, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = col
		}
	}
	if bestSimilarity < 0.7 {
		return "", false
	}
	return best, true
}

// ParseDelimiter resolves a configured delimiter. An empty value is inferred
// from the extension of path.
func ParseDelimiter(value, path string) (rune, error) {
	switch strings.ToLower(value) {
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tsv", ".tab", ".txt":
			return '\t', nil
		default:
			return ',', nil
		}
	case `\t`, "tab", "tsv":
		return '\t', nil
	case "comma", "csv":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}

	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", value)
	}
	return r, nil
}
