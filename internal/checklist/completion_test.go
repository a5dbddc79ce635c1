package checklist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCompletionPercentage_NoRequiredFields(t *testing.T) {
	t.Parallel()

	tpl := oneSection(
		textField("a", "A", nil),
		textField("b", "B", &FieldValidation{MaxLength: ptrI(5)}),
	)
	for _, d := range []Data{nil, {}, {"a": Text("x")}, {"zzz": Number(1)}} {
		assert.Equal(t, 100, CalculateCompletionPercentage(tpl, d))
	}
	assert.Equal(t, 100, CalculateCompletionPercentage(&Template{}, nil))
}

func TestCalculateCompletionPercentage_SingleRequired(t *testing.T) {
	t.Parallel()

	tpl := oneSection(textField("name", "Name", &FieldValidation{Required: true}))
	assert.Equal(t, 0, CalculateCompletionPercentage(tpl, Data{}))
	assert.Equal(t, 100, CalculateCompletionPercentage(tpl, Data{"name": Text("Acme")}))
	assert.Equal(t, 0, CalculateCompletionPercentage(tpl, Data{"name": Text("")}))
	assert.Equal(t, 0, CalculateCompletionPercentage(tpl, Data{"name": Null()}))
	assert.Equal(t, 100, CalculateCompletionPercentage(tpl, Data{"name": Text("0")}))
	assert.Equal(t, 100, CalculateCompletionPercentage(tpl, Data{"name": Number(0)}))
}

func TestCalculateCompletionPercentage_RoundsHalfUp(t *testing.T) {
	t.Parallel()

	var fields []FieldSchema
	for i := 0; i < 8; i++ {
		fields = append(fields, textField(fmt.Sprintf("f%d", i), "F", &FieldValidation{Required: true}))
	}
	tpl := oneSection(fields...)
	// 1/8 = 12.5% rounds to 13.
	assert.Equal(t, 13, CalculateCompletionPercentage(tpl, Data{"f0": Text("x")}))
	// 2/3 = 66.67% rounds to 67.
	tpl3 := oneSection(fields[:3]...)
	assert.Equal(t, 67, CalculateCompletionPercentage(tpl3, Data{"f0": Text("x"), "f1": Bool(true)}))
}

func TestCalculateCompletionPercentage_MonotonicAndBounded(t *testing.T) {
	t.Parallel()

	var fields []FieldSchema
	for i := 0; i < 7; i++ {
		fields = append(fields, textField(fmt.Sprintf("f%d", i), "F", &FieldValidation{Required: true}))
	}
	fields = append(fields, textField("optional", "O", nil))
	tpl := oneSection(fields...)

	data := Data{}
	prev := CalculateCompletionPercentage(tpl, data)
	assert.Equal(t, 0, prev)
	for i := 0; i < 7; i++ {
		data[fmt.Sprintf("f%d", i)] = Text("v")
		got := CalculateCompletionPercentage(tpl, data)
		assert.GreaterOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
	assert.Equal(t, 100, prev)
}

func TestCalculateCompletion_HiddenRequiredFields(t *testing.T) {
	t.Parallel()

	reason := textField("reason", "Begründung", &FieldValidation{Required: true})
	reason.Conditional = &ConditionalLogic{Field: "ok", Operator: OpEquals, Value: Bool(false)}
	tpl := oneSection(textField("ok", "OK", &FieldValidation{Required: true}), reason)
	tpl.Sections = append(tpl.Sections, Section{
		ID:          "s2",
		Conditional: &ConditionalLogic{Field: "ok", Operator: OpEquals, Value: Bool(false)},
		Fields:      []FieldSchema{textField("measures", "Maßnahmen", &FieldValidation{Required: true})},
	})
	data := Data{"ok": Bool(true)}

	t.Run("default counts hidden fields", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 33, CalculateCompletionPercentage(tpl, data))
		assert.Equal(t, 33, CalculateCompletion(CompletionCountHidden, tpl, data))
	})

	t.Run("visible only skips field and section conditionals", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 100, CalculateCompletion(CompletionVisibleOnly, tpl, data))
	})

	t.Run("index agrees with template functions", func(t *testing.T) {
		t.Parallel()
		idx, err := NewIndex(tpl)
		assert.NoError(t, err)
		assert.Equal(t, 33, idx.Completion(CompletionCountHidden, data))
		assert.Equal(t, 100, idx.Completion(CompletionVisibleOnly, data))
	})
}

func TestParseCompletionMode(t *testing.T) {
	t.Parallel()

	m, err := ParseCompletionMode("visible_only")
	assert.NoError(t, err)
	assert.Equal(t, CompletionVisibleOnly, m)

	m, err = ParseCompletionMode("")
	assert.NoError(t, err)
	assert.Equal(t, DefaultCompletionMode, m)

	_, err = ParseCompletionMode("sometimes")
	assert.Error(t, err)
}
