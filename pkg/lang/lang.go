// Package lang detects whether a line of statute text is written in Nepali
// (Devanagari script) or English.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language identifies the script family of a line of text. The zero value is
// not a valid language, so tables that omit their language are rejected.
type Language uint8

const (
	// English is the default for empty or mostly Latin text.
	English Language = iota + 1
	// Nepali is reported when Devanagari characters dominate.
	Nepali
)

// All lists every supported language in a stable order.
var All = []Language{English, Nepali}

// String returns the wire name of the language.
func (l Language) String() string {
	switch l {
	case Nepali:
		return "nepali"
	case English:
		return "english"
	default:
		return fmt.Sprintf("language(%d)", uint8(l))
	}
}

// DisplayName returns the language name written in its own script.
func (l Language) DisplayName() string {
	switch l {
	case Nepali:
		return "नेपाली"
	case English:
		return "English"
	default:
		return "Unknown"
	}
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	if l == Nepali {
		return language.Nepali
	}
	return language.English
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == English || l == Nepali
}

// ParseLanguage accepts the wire name, a BCP 47 tag ("ne", "en-US") or the
// native display name.
func ParseLanguage(s string) (Language, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "nepali", "नेपाली":
		return Nepali, nil
	case "english":
		return English, nil
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return English, fmt.Errorf("unknown language %q", s)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ne":
		return Nepali, nil
	case "en":
		return English, nil
	}
	return English, fmt.Errorf("unsupported language %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Language) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid language %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
