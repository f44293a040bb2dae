package tfidf

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TokenizerVersion identifies the tokenization rules. Artifacts record it and
// refuse to load under a different version, since vocabularies built with other
// rules would silently mis-encode text.
const TokenizerVersion = 1

// minTokenRunes drops single-character tokens.
const minTokenRunes = 2

// Tokenize lowercases text, strips accents, and splits it into word tokens of at
// least two letters, digits or underscores.
func Tokenize(text string) []string {
	text = stripAccents(strings.ToLower(text))

	fields := strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// stripAccents removes combining marks after NFD decomposition.
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
