// Package transcript normalizes text coming back from speech-to-text and
// enhancement providers before delivery.
package transcript

import (
	"strings"
	"unicode"
)

// Options controls normalization behavior.
type Options struct {
	CapitalizeSentences bool
	CapitalizePronounI  bool
	TrailingSpace       bool
}

// DefaultOptions matches what dictation output usually wants.
func DefaultOptions() Options {
	return Options{CapitalizeSentences: true, CapitalizePronounI: true}
}

// Normalize collapses whitespace and applies configured casing fixes.
func Normalize(text string, opts Options) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return ""
	}

	if opts.CapitalizeSentences {
		collapsed = capitalizeSentences(collapsed)
	}
	if opts.CapitalizePronounI {
		collapsed = capitalizePronounI(collapsed)
	}
	if opts.TrailingSpace {
		collapsed += " "
	}
	return collapsed
}

// capitalizeSentences uppercases the first letter of the text and the first
// letter following a terminal punctuation mark plus whitespace.
func capitalizeSentences(text string) string {
	runes := []rune(text)
	atStart := true
	afterBoundary := false

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r):
			if atStart || afterBoundary {
				runes[i] = unicode.ToUpper(r)
			}
			atStart = false
			afterBoundary = false
		case r == '.' || r == '!' || r == '?':
			afterBoundary = false
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				afterBoundary = true
			}
		case unicode.IsSpace(r):
			// Boundary state carries across whitespace.
		case unicode.IsDigit(r):
			atStart = false
			afterBoundary = false
		}
	}
	return string(runes)
}

// capitalizePronounI fixes the standalone pronoun and its contractions,
// which cloud ASR models frequently emit lowercased.
func capitalizePronounI(text string) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		trimmed := strings.TrimRight(word, ".,!?;:")
		switch trimmed {
		case "i", "i'm", "i'll", "i've", "i'd":
			words[i] = "I" + word[1:]
		}
	}
	return strings.Join(words, " ")
}
