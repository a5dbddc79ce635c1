package checklist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *Template {
	reason := textField("reason", "Begründung", &FieldValidation{Required: true})
	reason.Conditional = &ConditionalLogic{Field: "ok", Operator: OpEquals, Value: Bool(false)}
	return oneSection(
		FieldSchema{ID: "ok", Name: "ok", Label: "OK", Type: FieldTypeCheckbox},
		reason,
	)
}

func TestValidateTemplate_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateTemplate(validTemplate()))
}

func TestValidateTemplate_Problems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Template)
		want   string
	}{
		{"unknown field type", func(tp *Template) { tp.Sections[0].Fields[0].Type = "slider" }, "oneof"},
		{"missing field name", func(tp *Template) { tp.Sections[0].Fields[0].Name = "" }, "required"},
		{"duplicate name", func(tp *Template) { tp.Sections[0].Fields[1].Name = "ok" }, "duplicate field name"},
		{"bad pattern", func(tp *Template) { tp.Sections[0].Fields[1].Validation.Pattern = "(" }, "invalid validation pattern"},
		{"bad category", func(tp *Template) {
			tp.Config.Scoring = &ScoringConfig{Enabled: true, Categories: []SystemAuditCategory{1, 5}}
		}, "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tp := validTemplate()
			tt.mutate(tp)
			err := ValidateTemplate(tp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTemplate))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateTemplate_ConditionalProblemsAreWarnings(t *testing.T) {
	t.Parallel()

	tp := validTemplate()
	tp.Sections[0].Fields[1].Conditional.Operator = "starts_with"
	tp.Sections[0].Conditional = &ConditionalLogic{Field: "ghost", Operator: OpEquals, Value: Text("x")}

	require.NoError(t, ValidateTemplate(tp))
	assert.Equal(t, []string{
		"section s1: conditional references unknown field \"ghost\"",
		"field reason: unknown operator \"starts_with\"",
	}, TemplateWarnings(tp))
}

func TestTemplateWarnings_EmptyConditional(t *testing.T) {
	t.Parallel()

	tp := validTemplate()
	tp.Sections[0].Fields[1].Conditional = &ConditionalLogic{}
	require.NoError(t, ValidateTemplate(tp))
	assert.Len(t, TemplateWarnings(tp), 2)
	assert.Empty(t, TemplateWarnings(validTemplate()))
}

func TestSystemAuditCategory_Label(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "System funktioniert gut", CategoryWorksWell.Label())
	assert.Equal(t, "System funktioniert nicht", CategoryNotWorking.Label())
	assert.Equal(t, "", SystemAuditCategory(7).Label())
	assert.False(t, SystemAuditCategory(0).Valid())
	assert.True(t, CategorySignificantGap.Valid())
}
