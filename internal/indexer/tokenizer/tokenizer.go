// Package tokenizer provides text normalisation shared by the Boolean and
// vector retrieval models. Every function is total: empty input yields an
// empty result and nothing here returns an error.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Clean lower-cases text, replaces every character outside the Latin
// alphabet and whitespace with a space, collapses whitespace runs and trims
// the result. Input is NFKC-normalised first so compatibility forms such as
// full-width letters fold to their ASCII equivalents.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Normalize cleans text and splits it on whitespace.
func Normalize(text string) []string {
	cleaned := Clean(text)
	if cleaned == "" {
		return []string{}
	}
	return strings.Fields(cleaned)
}

// Words lower-cases text and returns its runs of word characters (letters,
// digits and underscore). Boolean indexing and Boolean queries both use it.
func Words(text string) []string {
	return wordRuns(strings.ToLower(text), 1)
}

// Terms is the vector-model analyser: word-character runs of at least two
// characters with English stop-words removed.
func Terms(text string) []string {
	runs := wordRuns(strings.ToLower(text), 2)
	terms := runs[:0]
	for _, w := range runs {
		if IsStopWord(w) {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// IsStopWord reports whether term is in the fixed English stop-word list.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

func wordRuns(text string, minLen int) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordChar(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minLen {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
