package checklist

import "strings"

// IsFieldVisible evaluates the field's conditional against data. Fields
// without a conditional are always visible.
func IsFieldVisible(field *FieldSchema, data Data) bool {
	return evaluateCondition(field.Conditional, data)
}

// IsSectionVisible evaluates a section's own conditional. The result does
// not propagate to the section's fields.
func IsSectionVisible(section *Section, data Data) bool {
	return evaluateCondition(section.Conditional, data)
}

// VisibleFields maps every field name of t to its field-level visibility.
func VisibleFields(t *Template, data Data) map[string]bool {
	out := make(map[string]bool)
	for _, f := range t.Fields() {
		out[f.Name] = IsFieldVisible(f, data)
	}
	return out
}

// evaluateCondition fails open: an unknown operator leaves the target visible.
func evaluateCondition(c *ConditionalLogic, data Data) bool {
	if c == nil {
		return true
	}
	target := data.Get(c.Field)

	switch c.Operator {
	case OpEquals:
		return target.StrictEqual(c.Value)
	case OpNotEquals:
		return !target.StrictEqual(c.Value)
	case OpContains:
		s, ok := target.AsString()
		return ok && strings.Contains(s, c.Value.String())
	case OpGreaterThan:
		n, ok := target.AsNumber()
		return ok && n > c.Value.ToNumber()
	case OpLessThan:
		n, ok := target.AsNumber()
		return ok && n < c.Value.ToNumber()
	default:
		return true
	}
}
