package titles

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// NormalizeSpacing inserts a space at Hangul/Latin, Latin/Hangul and digit/Hangul
// boundaries and collapses runs of whitespace into single spaces.
func NormalizeSpacing(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text) + 8)

	var prev rune
	for i, r := range text {
		if i > 0 && needsBoundary(prev, r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// GenerateSpacingVariants returns the spaced form of text and the same text with all whitespace removed.
func GenerateSpacingVariants(text string) types.SpacingVariants {
	spaced := NormalizeSpacing(text)
	unspaced := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, spaced)

	return types.SpacingVariants{Spaced: spaced, Unspaced: unspaced}
}

func needsBoundary(prev, next rune) bool {
	switch {
	case isHangul(prev) && isLatin(next):
		return true
	case isLatin(prev) && isHangul(next):
		return true
	case isDigit(prev) && isHangul(next):
		return true
	}
	return false
}

func isHangul(r rune) bool {
	return unicode.Is(unicode.Hangul, r)
}

func isLatin(r rune) bool {
	return unicode.Is(unicode.Latin, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
