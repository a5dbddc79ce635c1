// Package checklist evaluates checklist templates against submitted response
// data: conditional visibility, completion scoring and field validation.
package checklist

// FieldType is the input type of a checklist field.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeCurrency    FieldType = "currency"
	FieldTypeDate        FieldType = "date"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeRating      FieldType = "rating" // system audit categories
	FieldTypeFile        FieldType = "file"
)

// Operator is the comparison used by a conditional predicate.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// FieldOption is one choice of a select, multiselect or radio field.
type FieldOption struct {
	Value       string `json:"value" yaml:"value" validate:"required"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FieldValidation holds the declarative rules of a field. Nil bounds are unset.
type FieldValidation struct {
	Required       bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Min            *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max            *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength      *int     `json:"minLength,omitempty" yaml:"minLength,omitempty" validate:"omitempty,gte=0"`
	MaxLength      *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"omitempty,gte=0"`
	Pattern        string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage string   `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty"`
}

// ConditionalLogic is a single visibility predicate against another field.
// Compound conditions are not supported.
type ConditionalLogic struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    Value    `json:"value" yaml:"value"`
}

// ReportMapping is passed through to report generation untouched.
type ReportMapping struct {
	TextModule  string `json:"textModule,omitempty" yaml:"textModule,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
}

// FieldSchema describes one field. Name is the key into the response data
// and is unique within a template.
type FieldSchema struct {
	ID            string            `json:"id" yaml:"id" validate:"required"`
	Name          string            `json:"name" yaml:"name" validate:"required"`
	Label         string            `json:"label" yaml:"label"`
	Type          FieldType         `json:"type" yaml:"type" validate:"required,oneof=text textarea number currency date select multiselect checkbox radio rating file"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder   string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	DefaultValue  *Value            `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options       []FieldOption     `json:"options,omitempty" yaml:"options,omitempty" validate:"dive"`
	Validation    *FieldValidation  `json:"validation,omitempty" yaml:"validation,omitempty"`
	Conditional   *ConditionalLogic `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	ReportMapping *ReportMapping    `json:"reportMapping,omitempty" yaml:"reportMapping,omitempty"`
}

// IsRequired reports whether the field carries a required rule.
func (f *FieldSchema) IsRequired() bool {
	return f.Validation != nil && f.Validation.Required
}
