package idno

import (
	"strings"

	"github.com/coolbeans/kanun/pkg/lang"
)

// nepaliClauseLetters maps the first ten Devanagari consonants to clause
// codes a..j. Letters past ञ have no code and pass through unchanged.
var nepaliClauseLetters = map[string]string{
	"क": "a",
	"ख": "b",
	"ग": "c",
	"घ": "d",
	"ङ": "e",
	"च": "f",
	"छ": "g",
	"ज": "h",
	"झ": "i",
	"ञ": "j",
}

// ToLatinDigits replaces Devanagari digits ०-९ with 0-9. Every other
// character is kept as is.
func ToLatinDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '०' && r <= '९' {
			return '0' + (r - '०')
		}
		return r
	}, s)
}

// ClauseCode returns the Latin clause code for a clause letter. Nepali
// letters go through the fixed consonant table; English letters are lower
// cased.
func ClauseCode(letter string, language lang.Language) string {
	if language == lang.Nepali {
		if code, ok := nepaliClauseLetters[letter]; ok {
			return code
		}
		return letter
	}
	return strings.ToLower(letter)
}
