package catalog

import (
	"iter"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lower lowercases s without language-specific tailoring.
// A Caser is stateful, so one is created per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// normalize lowercases s, spells out '+' and drops every rune that is not a
// letter, digit or whitespace. Punctuation is removed, not replaced, so
// "T-Shirts" becomes "tshirts".
func normalize(s string) string {
	s = strings.ReplaceAll(lower(s), "+", " plus ")
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// Tokenize returns the normalized, stemmed tokens of s in input order.
// Duplicates are kept because scoring counts every occurrence.
// The sequence is lazy and can be ranged over any number of times.
func Tokenize(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for field := range strings.FieldsSeq(normalize(s)) {
			if !yield(Stem(field)) {
				return
			}
		}
	}
}

// Tokens collects Tokenize(s) into a slice.
func Tokens(s string) []string {
	return slices.Collect(Tokenize(s))
}

// Stem maps an inflected English token to an approximate root.
// A possessive "'s" (ASCII or U+2019 apostrophe) is removed; otherwise a
// trailing "s" is removed from tokens longer than three characters.
// This is deliberately crude: "glass" becomes "glas", "plus" becomes "plu".
func Stem(token string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(token, suffix) {
			return strings.TrimSuffix(token, suffix)
		}
	}
	if strings.HasSuffix(token, "s") && len([]rune(token)) > 3 {
		return token[:len(token)-1]
	}
	return token
}
