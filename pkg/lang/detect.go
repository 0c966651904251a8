package lang

import (
	"math"
	"strings"
	"unicode/utf16"
)

// NepaliThreshold is the Devanagari fraction a line must exceed to be
// classified as Nepali. Mixed lines that quote a few words of the other
// script keep their majority language.
const NepaliThreshold = 0.30

const (
	devanagariFirst = 'ऀ'
	devanagariLast  = 'ॿ'
)

// IsDevanagari reports whether r falls in the Devanagari Unicode block.
func IsDevanagari(r rune) bool {
	return r >= devanagariFirst && r <= devanagariLast
}

// count returns the number of Devanagari characters and the total length of
// text in UTF-16 code units.
func count(text string) (devanagari, total int) {
	for _, r := range text {
		if IsDevanagari(r) {
			devanagari++
		}
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		total += n
	}
	return devanagari, total
}

// Detect classifies text as Nepali or English. Empty input is English.
func Detect(text string) Language {
	if text == "" {
		return English
	}
	devanagari, total := count(text)
	if float64(devanagari)/float64(total) > NepaliThreshold {
		return Nepali
	}
	return English
}

// IsPrimarilyNepali reports whether Detect returns Nepali for text.
func IsPrimarilyNepali(text string) bool {
	return Detect(text) == Nepali
}

// IsPrimarilyEnglish reports whether Detect returns English for text.
func IsPrimarilyEnglish(text string) bool {
	return Detect(text) == English
}

// LineLanguage pairs one line of a block with its detected language.
type LineLanguage struct {
	Line     string   `json:"line"`
	Language Language `json:"language"`
}

// DetectPerLine runs Detect independently on every line of text. Lines are
// split on "\n" only and returned untrimmed, blank lines included.
func DetectPerLine(text string) []LineLanguage {
	lines := strings.Split(text, "\n")
	result := make([]LineLanguage, len(lines))
	for i, line := range lines {
		result[i] = LineLanguage{Line: line, Language: Detect(line)}
	}
	return result
}

// CharacterCount breaks down the characters of a text by script.
type CharacterCount struct {
	Nepali  int `json:"nepali"`
	English int `json:"english"`
	Total   int `json:"total"`
}

// Statistics describes the script composition of a text. It is meant for
// display; identifier generation only uses Detect.
type Statistics struct {
	NepaliPercent   float64        `json:"nepali"`
	EnglishPercent  float64        `json:"english"`
	Mixed           bool           `json:"mixed"`
	PrimaryLanguage Language       `json:"primaryLanguage"`
	Characters      CharacterCount `json:"characterCount"`
}

// Stats computes the script composition of text. Percentages are rounded to
// two decimals. Every non-Devanagari character counts as English.
func Stats(text string) Statistics {
	if text == "" {
		return Statistics{PrimaryLanguage: English}
	}

	devanagari, total := count(text)
	other := total - devanagari
	return Statistics{
		NepaliPercent:   percent(devanagari, total),
		EnglishPercent:  percent(other, total),
		Mixed:           devanagari > 0 && other > 0,
		PrimaryLanguage: Detect(text),
		Characters: CharacterCount{
			Nepali:  devanagari,
			English: other,
			Total:   total,
		},
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
