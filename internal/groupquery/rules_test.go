package groupquery

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

func TestValidateResponse(t *testing.T) {
	t.Parallel()

	q := &GroupQuery{Config: Config{ValidationRules: []ValidationRule{
		{Field: "operations", Rule: RuleRequired, Message: "Anzahl Vorhaben fehlt"},
		{Field: "operations", Rule: RuleMin, Value: checklist.Number(1), Message: "mindestens ein Vorhaben"},
		{Field: "errorRate", Rule: RuleMax, Value: checklist.Text("0.5"), Message: "Fehlerquote zu hoch"},
		{Field: "reference", Rule: RulePattern, Value: checklist.Text(`^AZ-\d+$`), Message: "Aktenzeichen ungültig"},
	}}}

	errs, err := ValidateResponse(q, checklist.Data{
		"operations": checklist.Number(0),
		"errorRate":  checklist.Number(0.7),
		"reference":  checklist.Text("XY-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []checklist.ValidationError{
		{Field: "operations", Message: "mindestens ein Vorhaben"},
		{Field: "errorRate", Message: "Fehlerquote zu hoch"},
		{Field: "reference", Message: "Aktenzeichen ungültig"},
	}, errs)

	errs, err = ValidateResponse(q, checklist.Data{
		"operations": checklist.Number(4),
		"errorRate":  checklist.Number(0.02),
		"reference":  checklist.Text("AZ-17"),
	})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.NotNil(t, errs)

	errs, err = ValidateResponse(q, checklist.Data{})
	require.NoError(t, err)
	assert.Equal(t, []checklist.ValidationError{{Field: "operations", Message: "Anzahl Vorhaben fehlt"}}, errs)
}

func TestValidateResponse_BadPattern(t *testing.T) {
	t.Parallel()

	q := &GroupQuery{Config: Config{ValidationRules: []ValidationRule{
		{Field: "x", Rule: RulePattern, Value: checklist.Text("(unclosed"), Message: "m"},
	}}}
	_, err := ValidateResponse(q, checklist.Data{"x": checklist.Text("a")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, checklist.ErrInvalidPattern))
}

func TestValidateResponse_UnknownRule(t *testing.T) {
	t.Parallel()

	q := &GroupQuery{Config: Config{ValidationRules: []ValidationRule{{Field: "x", Rule: "between"}}}}
	_, err := ValidateResponse(q, checklist.Data{})
	assert.Error(t, err)
}

func TestCurrentData(t *testing.T) {
	t.Parallel()

	r := &Response{
		ChecklistData:  checklist.Data{"a": checklist.Text("live")},
		CurrentVersion: 2,
		Versions: []ResponseVersion{
			{Version: 1, Data: checklist.Data{"a": checklist.Text("v1")}},
			{Version: 2, Data: checklist.Data{"a": checklist.Text("v2")}},
		},
	}
	assert.Equal(t, checklist.Text("v2"), CurrentData(r).Get("a"))

	r.CurrentVersion = 3
	assert.Equal(t, checklist.Text("live"), CurrentData(r).Get("a"))
}

func TestSummaryData_JSON(t *testing.T) {
	t.Parallel()

	var r Response
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "r1",
		"assignmentId": "a1",
		"checklistData": {"name": "Behörde"},
		"summaryData": {"totalOperations": 120, "errorRate": 0.025, "fund": "EFRE", "flag": null},
		"versions": [],
		"currentVersion": 1,
		"submittedBy": "u1",
		"submittedAt": "2025-01-31T10:00:00Z"
	}`), &r))

	n, ok := r.SummaryData.Number(SummaryTotalOperations)
	assert.True(t, ok)
	assert.Equal(t, 120.0, n)
	assert.Equal(t, 0.025, r.SummaryData.NumberOr(SummaryErrorRate, -1))
	assert.Equal(t, -1.0, r.SummaryData.NumberOr(SummaryTotalAmount, -1))
	assert.Equal(t, "EFRE", r.SummaryData.Key("fund"))
	assert.Equal(t, "", r.SummaryData.Key("flag"))
	assert.Equal(t, "", r.SummaryData.Key("missing"))
}
