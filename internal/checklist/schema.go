package checklist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// ErrInvalidTemplate is returned by ValidateTemplate for structurally
// broken templates.
var ErrInvalidTemplate = eris.New("checklist: invalid template")

var structValidator = validator.New()

var knownOperators = map[Operator]bool{
	OpEquals:      true,
	OpNotEquals:   true,
	OpContains:    true,
	OpGreaterThan: true,
	OpLessThan:    true,
}

// ValidateTemplate checks the structure of a template: required ids and
// names, known field types, unique field names and compilable patterns.
// Conditionals are not checked here; see TemplateWarnings.
func ValidateTemplate(t *Template) error {
	var problems []string

	if err := structValidator.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return eris.Wrap(err, "checklist: validate template struct")
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	seen := make(map[string]bool)
	for _, f := range t.Fields() {
		if f.Name == "" {
			continue
		}
		if seen[f.Name] {
			problems = append(problems, fmt.Sprintf("duplicate field name %q", f.Name))
		}
		seen[f.Name] = true
	}

	if _, err := NewIndex(t); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return eris.Wrap(ErrInvalidTemplate, strings.Join(problems, "; "))
	}
	return nil
}

// TemplateWarnings lists conditionals with an unknown operator or a
// reference to a field the template does not define. Such conditionals
// still evaluate as visible, so they never make a template invalid.
func TemplateWarnings(t *Template) []string {
	names := make(map[string]bool)
	for _, f := range t.Fields() {
		names[f.Name] = true
	}

	var warnings []string
	check := func(owner string, c *ConditionalLogic) {
		if c == nil {
			return
		}
		if !knownOperators[c.Operator] {
			warnings = append(warnings, fmt.Sprintf("%s: unknown operator %q", owner, c.Operator))
		}
		if !names[c.Field] {
			warnings = append(warnings, fmt.Sprintf("%s: conditional references unknown field %q", owner, c.Field))
		}
	}
	for si := range t.Sections {
		sec := &t.Sections[si]
		check("section "+sec.ID, sec.Conditional)
		for fi := range sec.Fields {
			check("field "+sec.Fields[fi].Name, sec.Fields[fi].Conditional)
		}
	}
	return warnings
}
