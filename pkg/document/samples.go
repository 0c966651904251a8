package document

import (
	"embed"
	"fmt"

	"github.com/coolbeans/kanun/pkg/lang"
)

//go:embed samples/*.txt
var sampleFS embed.FS

// Sample returns the built-in sample statute text for a language.
func Sample(language lang.Language) (string, error) {
	if !language.Valid() {
		return "", fmt.Errorf("no sample for language %d", uint8(language))
	}
	data, err := sampleFS.ReadFile("samples/" + language.String() + ".txt")
	if err != nil {
		return "", fmt.Errorf("reading sample: %w", err)
	}
	return string(data), nil
}
