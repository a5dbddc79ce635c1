package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/config"
	"github.com/flowaudit/audit-engine/internal/docbox"
	"github.com/flowaudit/audit-engine/internal/evaluation"
	"github.com/flowaudit/audit-engine/internal/groupquery"
)

func TestLoadFile_YAMLAndJSON(t *testing.T) {
	type doc struct {
		Name  string `json:"name" yaml:"name"`
		Count int    `json:"count" yaml:"count"`
	}

	var fromYAML, fromJSON doc
	require.NoError(t, loadFile(writeFile(t, "a.yml", "name: Amt\ncount: 3\n"), &fromYAML))
	require.NoError(t, loadFile(writeFile(t, "a.json", `{"name":"Amt","count":3}`), &fromJSON))
	assert.Equal(t, doc{Name: "Amt", Count: 3}, fromYAML)
	assert.Equal(t, fromYAML, fromJSON)

	err := loadFile(writeFile(t, "broken.json", `{"name":`), &fromJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json")
}

func TestLoadFile_ChecklistData(t *testing.T) {
	var data checklist.Data
	require.NoError(t, loadFile(writeFile(t, "data.yaml", "name: Prüfamt\nbudget: 1200.5\nok: true\n"), &data))

	s, ok := data.Get("name").AsString()
	assert.True(t, ok)
	assert.Equal(t, "Prüfamt", s)
	n, ok := data.Get("budget").AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 1200.5, n)
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	formatReport(&buf, checklist.Report{
		CompletionPercentage: 50,
		Errors:               []checklist.ValidationError{{Field: "zip", Message: "PLZ hat ein ungültiges Format"}},
		Visibility:           map[string]bool{"zip": true, "reason": false},
	})
	out := buf.String()
	assert.Contains(t, out, "Vollständigkeit: 50%")
	assert.Contains(t, out, "PLZ hat ein ungültiges Format")
	assert.Contains(t, out, "ausgeblendet: reason")
	assert.NotContains(t, out, "ausgeblendet: zip")
	assert.NotContains(t, out, "Warnung")
}

func TestLoadIndex_UnknownOperatorIsAWarning(t *testing.T) {
	path := writeFile(t, "template.yaml", `id: tpl-1
name: Vorhabenprüfung
version: 1
sections:
  - id: s1
    title: Allgemein
    fields:
      - {id: a, name: a, label: A, type: text}
      - id: b
        name: b
        label: B
        type: text
        conditional: {field: a, operator: starts_with, value: x}
`)
	idx, mode, err := loadIndex(path, "count_hidden")
	require.NoError(t, err)
	assert.Equal(t, checklist.CompletionCountHidden, mode)

	r := idx.Check(mode, checklist.Data{"a": checklist.Text("y")})
	assert.True(t, r.Visibility["b"])

	var buf bytes.Buffer
	formatReport(&buf, r)
	assert.Contains(t, buf.String(), `Warnung: field b: unknown operator "starts_with"`)
}

func TestFormatBatchResults(t *testing.T) {
	var buf bytes.Buffer
	formatBatchResults(&buf, []checklist.BatchResult{
		{InstanceID: "inst-1", CompletionPercentage: 100},
		{InstanceID: "inst-2", CompletionPercentage: 40, Errors: []checklist.ValidationError{{Field: "a"}}, Stale: true},
	})
	out := buf.String()
	assert.Contains(t, out, "INSTANCE")
	assert.Contains(t, out, "inst-2")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "2 instances, 1 with errors")
}

func TestFormatBoxStatistics(t *testing.T) {
	docs := []docbox.Document{
		{
			ID:                 "d1",
			ManualVerification: &docbox.ManualVerification{Status: docbox.StatusVerified},
			MatchedExpenditure: &docbox.MatchedExpenditure{Amount: 1500},
		},
		{ID: "d2"},
	}
	var buf bytes.Buffer
	require.NoError(t, formatBoxStatistics(&buf, docbox.CalculateBoxStatistics(docs), docbox.StatusCounts(docs)))
	out := buf.String()
	assert.Contains(t, out, "Dokumente")
	assert.Contains(t, out, "1.500,00\u00a0€")
	assert.Contains(t, out, "Status pending")
}

func TestFormatQueryStatus(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	q := &groupquery.GroupQuery{
		ID:       "gq-1",
		Title:    "Jahresabfrage",
		Deadline: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Config:   groupquery.Config{EvaluationTrigger: groupquery.TriggerManual},
	}
	q.Assignments = []groupquery.Assignment{
		{ID: "a1", AuthorityID: "auth-1", Status: groupquery.AssignmentSubmitted},
		{ID: "a2", AuthorityID: "auth-2", Status: groupquery.AssignmentPending, Progress: 10},
	}
	var buf bytes.Buffer
	formatQueryStatus(&buf, q, groupquery.Summarize(q, now))
	out := buf.String()
	assert.Contains(t, out, "Jahresabfrage (gq-1)")
	assert.Contains(t, out, "31.03.2025, 00:00")
	assert.Contains(t, out, "noch 10 Tage")
	assert.Contains(t, out, "Eingereicht: 1 von 2 (50\u00a0%)")
	assert.Contains(t, out, "Auswertung möglich: ja")
	assert.Contains(t, out, "auth-2")
}

func TestFormatResponseCheck(t *testing.T) {
	var buf bytes.Buffer
	formatResponseCheck(&buf, nil, nil)
	assert.Contains(t, buf.String(), "Antwort vollständig.")

	buf.Reset()
	formatResponseCheck(&buf,
		[]checklist.ValidationError{{Field: "totalOperations", Message: "Anzahl fehlt"}},
		[]groupquery.AttachmentRequirement{{ID: "att-1", Name: "Prüfbericht"}})
	assert.Contains(t, buf.String(), "Anzahl fehlt")
	assert.Contains(t, buf.String(), "Anlage fehlt: Prüfbericht")
}

func TestFormatNextSteps(t *testing.T) {
	var buf bytes.Buffer
	formatNextSteps(&buf, &groupquery.Assignment{ID: "a1", Status: groupquery.AssignmentSubmitted})
	out := buf.String()
	assert.Contains(t, out, "Nächste Schritte für a1 (submitted)")
	assert.Contains(t, out, "return -> returned")
	assert.Contains(t, out, "accept -> accepted")

	buf.Reset()
	formatNextSteps(&buf, &groupquery.Assignment{ID: "a2", Status: groupquery.AssignmentAccepted})
	assert.Contains(t, buf.String(), "Keine weiteren Schritte für a2 (accepted)")
}

func TestAdvanceAssignment(t *testing.T) {
	q := &groupquery.GroupQuery{ID: "gq-1", Assignments: []groupquery.Assignment{
		{ID: "a1", Status: groupquery.AssignmentReadyForReview},
	}}

	a, err := advanceAssignment(q, "a1", groupquery.EventSubmit)
	require.NoError(t, err)
	assert.Equal(t, groupquery.AssignmentSubmitted, a.Status)
	assert.Equal(t, groupquery.AssignmentReadyForReview, q.Assignments[0].Status)

	_, err = advanceAssignment(q, "a1", groupquery.EventAccept)
	assert.ErrorIs(t, err, groupquery.ErrInvalidTransition)

	_, err = advanceAssignment(q, "missing", groupquery.EventStart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormatEvaluationList(t *testing.T) {
	var buf bytes.Buffer
	formatEvaluationList(&buf, []evaluation.Evaluation{{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		QueryID:   "gq-1",
		TenantID:  "land-nrw",
		CreatedAt: time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC),
		Results: evaluation.Results{
			TotalAuthorities:     3,
			RespondedAuthorities: 2,
			AggregatedData:       evaluation.AggregatedData{WeightedErrorRate: 0.025},
		},
	}})
	out := buf.String()
	assert.Contains(t, out, "0f8fad5b")
	assert.NotContains(t, out, "d9cb")
	assert.Contains(t, out, "2025-04-02 08:30")
	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "2,50\u00a0%")
}

func TestNewHTTPServer(t *testing.T) {
	c := &config.Config{
		Server:     config.ServerConfig{Port: 9090, RateLimitRPS: 10, RateLimitBurst: 10},
		Evaluation: config.EvaluationConfig{Metric: "error_rate"},
		Checklist:  config.ChecklistConfig{CompletionMode: "count_hidden"},
	}
	srv := newHTTPServer(c, nil)
	assert.Equal(t, ":9090", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
