package checklist

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// ErrInvalidPattern is returned when a field's validation pattern does not
// compile. A template with a broken pattern cannot be validated.
var ErrInvalidPattern = eris.New("checklist: invalid validation pattern")

// Index is a read-only view of a template with lookups by field name and
// pre-compiled validation patterns. It is safe for concurrent use.
type Index struct {
	Template *Template

	fields   []*FieldSchema
	sections []*Section // parallel to fields
	byName   map[string]*FieldSchema
	required []*FieldSchema
	patterns map[string]*regexp.Regexp
	warnings []string
}

// NewIndex indexes t. Validation patterns are compiled up front; the first
// pattern that fails to compile aborts with ErrInvalidPattern.
func NewIndex(t *Template) (*Index, error) {
	idx := &Index{
		Template: t,
		byName:   make(map[string]*FieldSchema),
		patterns: make(map[string]*regexp.Regexp),
	}
	for si := range t.Sections {
		sec := &t.Sections[si]
		for fi := range sec.Fields {
			f := &sec.Fields[fi]
			idx.fields = append(idx.fields, f)
			idx.sections = append(idx.sections, sec)
			idx.byName[f.Name] = f
			if f.IsRequired() {
				idx.required = append(idx.required, f)
			}
			if f.Validation != nil && f.Validation.Pattern != "" {
				re, err := regexp.Compile(f.Validation.Pattern)
				if err != nil {
					return nil, eris.Wrapf(ErrInvalidPattern, "field %q: %s", f.Name, err.Error())
				}
				idx.patterns[f.Name] = re
			}
		}
	}
	idx.warnings = TemplateWarnings(t)
	return idx, nil
}

// Warnings returns the template's conditional warnings.
func (idx *Index) Warnings() []string {
	return idx.warnings
}

// ByName returns the field with the given name, or nil if not found.
func (idx *Index) ByName(name string) *FieldSchema {
	return idx.byName[name]
}

// Fields returns all fields in template order.
func (idx *Index) Fields() []*FieldSchema {
	return idx.fields
}

// Required returns all fields carrying a required rule, in template order.
func (idx *Index) Required() []*FieldSchema {
	return idx.required
}

// sectionOf returns the section that owns the i-th field.
func (idx *Index) sectionOf(i int) *Section {
	return idx.sections[i]
}
