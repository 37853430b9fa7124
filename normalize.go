package main

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes accented characters and drops the combining
// marks, so "cartão crédito" becomes "cartao credito".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	nonAlnumRE   = regexp.MustCompile(`[^a-z0-9,\s]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// NormalizeText canonicalizes OCR text for keyword matching: accents are
// stripped to base Latin letters, everything is lowercased, any character
// outside [a-z0-9,\s] becomes a space and whitespace runs are collapsed.
// The raw text is kept separately for field extraction, where casing and
// punctuation still carry signal.
func NormalizeText(raw string) string {
	s, _, err := transform.String(accentStripper, raw)
	if err != nil {
		s = raw
	}
	s = strings.ToLower(s)
	s = nonAlnumRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
