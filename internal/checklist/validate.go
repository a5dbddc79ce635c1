package checklist

import (
	"fmt"
	"unicode/utf16"
)

// ValidationError is a domain validation failure for one field. It is data,
// not an error value.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateChecklistData checks data against every field's validation rules
// and returns the failures in template order. The returned error is non-nil
// only when the template itself is broken (see ErrInvalidPattern).
func ValidateChecklistData(t *Template, data Data) ([]ValidationError, error) {
	idx, err := NewIndex(t)
	if err != nil {
		return nil, err
	}
	return idx.Validate(data), nil
}

// Validate checks data against the indexed template. There is no
// cross-field validation.
func (idx *Index) Validate(data Data) []ValidationError {
	errs := []ValidationError{}
	for _, f := range idx.fields {
		rules := f.Validation
		if rules == nil {
			continue
		}
		value := data.Get(f.Name)

		if rules.Required && value.IsBlank() {
			errs = append(errs, ValidationError{Field: f.Name, Message: f.Label + " ist erforderlich"})
			continue
		}
		if value.IsNull() {
			continue
		}

		if n, ok := value.AsNumber(); ok {
			if rules.Min != nil && n < *rules.Min {
				errs = append(errs, ValidationError{
					Field:   f.Name,
					Message: fmt.Sprintf("%s muss mindestens %s sein", f.Label, formatNumber(*rules.Min)),
				})
			}
			if rules.Max != nil && n > *rules.Max {
				errs = append(errs, ValidationError{
					Field:   f.Name,
					Message: fmt.Sprintf("%s darf maximal %s sein", f.Label, formatNumber(*rules.Max)),
				})
			}
		}

		if s, ok := value.AsString(); ok {
			length := textLength(s)
			if rules.MinLength != nil && length < *rules.MinLength {
				errs = append(errs, ValidationError{
					Field:   f.Name,
					Message: fmt.Sprintf("%s muss mindestens %d Zeichen haben", f.Label, *rules.MinLength),
				})
			}
			if rules.MaxLength != nil && length > *rules.MaxLength {
				errs = append(errs, ValidationError{
					Field:   f.Name,
					Message: fmt.Sprintf("%s darf maximal %d Zeichen haben", f.Label, *rules.MaxLength),
				})
			}
			if re, ok := idx.patterns[f.Name]; ok && !re.MatchString(s) {
				msg := rules.PatternMessage
				if msg == "" {
					msg = f.Label + " hat ein ungültiges Format"
				}
				errs = append(errs, ValidationError{Field: f.Name, Message: msg})
			}
		}
	}
	return errs
}

// textLength counts UTF-16 code units so limits agree with the form
// clients that enforce the same maxLength.
func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
