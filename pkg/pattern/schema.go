package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a schema validation error with context
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no errors"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(errs), strings.Join(messages, "\n  - "))
}

// HasField reports whether any error concerns the given field.
func (errs ValidationErrors) HasField(field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ValidateSchema performs comprehensive validation of a LanguagePattern.
// Unlike Compile, which stops at the first bad pattern, it reports every
// problem found.
func ValidateSchema(lp *LanguagePattern) ValidationErrors {
	var errs ValidationErrors

	if lp.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "required field is missing",
		})
	}

	if lp.Version == "" {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "required field is missing",
		})
	} else if !isValidVersion(lp.Version) {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "must be semantic version (e.g., 1.0.0)",
			Value:   lp.Version,
		})
	}

	if !lp.Language.Valid() {
		errs = append(errs, ValidationError{
			Field:   "language",
			Message: "required; must be nepali or english",
			Value:   lp.Language,
		})
	}

	for _, np := range lp.fields(&CompiledPattern{}) {
		errs = append(errs, validatePattern(np)...)
	}

	return errs
}

func validatePattern(np namedPattern) ValidationErrors {
	if np.source == "" {
		if np.optional {
			return nil
		}
		return ValidationErrors{{
			Field:   np.field,
			Message: "pattern is required",
		}}
	}

	re, err := regexp.Compile(np.source)
	if err != nil {
		return ValidationErrors{{
			Field:   np.field,
			Message: "invalid regular expression",
			Value:   err,
		}}
	}

	if re.NumSubexp() < np.groups {
		return ValidationErrors{{
			Field:   np.field,
			Message: fmt.Sprintf("must define %d capture group(s)", np.groups),
			Value:   re.NumSubexp(),
		}}
	}

	return nil
}

func isValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
