package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/docbox"
	"github.com/flowaudit/audit-engine/internal/evaluation"
	"github.com/flowaudit/audit-engine/internal/format"
	"github.com/flowaudit/audit-engine/internal/groupquery"
	"github.com/flowaudit/audit-engine/internal/session"
	"github.com/flowaudit/audit-engine/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			zap.L().Warn("api: health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type validateChecklistRequest struct {
	Template       checklist.Template `json:"template"`
	Data           checklist.Data     `json:"data"`
	CompletionMode string             `json:"completionMode,omitempty"`
}

func (s *Server) handleValidateChecklist(w http.ResponseWriter, r *http.Request) {
	var req validateChecklistRequest
	if !decode(w, r, &req) {
		return
	}
	mode := s.defaults.CompletionMode
	if req.CompletionMode != "" {
		m, err := checklist.ParseCompletionMode(req.CompletionMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}
	if mode == "" {
		mode = checklist.DefaultCompletionMode
	}

	if err := checklist.ValidateTemplate(&req.Template); err != nil {
		writeDomainError(w, err)
		return
	}
	idx, err := checklist.NewIndex(&req.Template)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	for _, warning := range idx.Warnings() {
		zap.L().Warn("api: checklist template warning",
			zap.String("template_id", req.Template.ID),
			zap.String("warning", warning),
		)
	}
	writeJSON(w, http.StatusOK, idx.Check(mode, req.Data))
}

type documentStatisticsRequest struct {
	Documents []docbox.Document `json:"documents"`
}

type documentStatisticsResponse struct {
	Statistics docbox.Statistics        `json:"statistics"`
	Statuses   map[string]docbox.Status `json:"statuses"`
	Display    amountDisplay            `json:"display"`
}

// amountDisplay holds the box amounts formatted for the caller's locale.
type amountDisplay struct {
	TotalAmount    string `json:"totalAmount"`
	VerifiedAmount string `json:"verifiedAmount"`
	RejectedAmount string `json:"rejectedAmount"`
}

func displayAmounts(f *format.Formatter, st docbox.Statistics) (amountDisplay, error) {
	var d amountDisplay
	for _, a := range []struct {
		dst   *string
		value float64
	}{
		{&d.TotalAmount, st.TotalAmount},
		{&d.VerifiedAmount, st.VerifiedAmount},
		{&d.RejectedAmount, st.RejectedAmount},
	} {
		s, err := f.Currency(a.value, "EUR")
		if err != nil {
			return amountDisplay{}, err
		}
		*a.dst = s
	}
	return d, nil
}

func (s *Server) handleDocumentStatistics(w http.ResponseWriter, r *http.Request) {
	var req documentStatisticsRequest
	if !decode(w, r, &req) {
		return
	}
	resp := documentStatisticsResponse{
		Statistics: docbox.CalculateBoxStatistics(req.Documents),
		Statuses:   make(map[string]docbox.Status, len(req.Documents)),
	}
	for i := range req.Documents {
		d := &req.Documents[i]
		resp.Statuses[d.ID] = docbox.GetDocumentStatus(d)
	}
	display, err := displayAmounts(session.FromContext(r.Context()).Formatter(), resp.Statistics)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp.Display = display
	writeJSON(w, http.StatusOK, resp)
}

type queryStatusRequest struct {
	Query groupquery.GroupQuery `json:"query"`
}

func (s *Server) handleQueryStatus(w http.ResponseWriter, r *http.Request) {
	var req queryStatusRequest
	if !decode(w, r, &req) {
		return
	}
	now := session.FromContext(r.Context()).Now()
	writeJSON(w, http.StatusOK, groupquery.Summarize(&req.Query, now))
}

type evaluateRequest struct {
	Query     groupquery.GroupQuery `json:"query"`
	Responses []groupquery.Response `json:"responses"`
	Options   evaluation.Options    `json:"options"`
	Template  *checklist.Template   `json:"template,omitempty"`
}

// mergeOptions overlays the request options onto the server defaults.
func (s *Server) mergeOptions(req evaluation.Options, sess session.Session) evaluation.Options {
	opts := s.defaults
	opts.Excluded = req.Excluded
	opts.History = req.History
	if req.Metric != "" {
		opts.Metric = req.Metric
	}
	if req.FundKey != "" {
		opts.FundKey = req.FundKey
	}
	if req.ErrorCategoryKey != "" {
		opts.ErrorCategoryKey = req.ErrorCategoryKey
	}
	if req.AuditTypeKey != "" {
		opts.AuditTypeKey = req.AuditTypeKey
	}
	if req.TrendBand != nil {
		opts.TrendBand = req.TrendBand
	}
	opts.TenantID = sess.TenantID
	opts.CreatedBy = sess.UserID
	opts.Now = sess.Now()
	return opts
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := evaluation.ParseMetric(string(req.Options.Metric)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if b := req.Options.TrendBand; b != nil && (*b < 0 || *b > 1) {
		writeError(w, http.StatusBadRequest, "trendBand must be between 0 and 1")
		return
	}

	sess := session.FromContext(r.Context())
	opts := s.mergeOptions(req.Options, sess)
	opts.Template = req.Template

	ev, err := evaluation.Evaluate(&req.Query, req.Responses, opts)
	if err != nil {
		s.metrics.Evaluations.WithLabelValues("rejected").Inc()
		writeDomainError(w, err)
		return
	}
	s.metrics.Evaluations.WithLabelValues("computed").Inc()

	if s.store != nil {
		if err := s.store.SaveEvaluation(r.Context(), ev); err != nil {
			writeDomainError(w, err)
			return
		}
		s.metrics.Archived.Inc()
		zap.L().Info("api: evaluation archived",
			zap.String("evaluation_id", ev.ID),
			zap.String("query_id", ev.QueryID),
			zap.String("tenant_id", ev.TenantID),
		)
	}
	writeJSON(w, http.StatusOK, ev)
}

// visible reports whether the caller's tenant may read ev. Anonymous
// callers only see evaluations without a tenant.
func visible(ev *evaluation.Evaluation, sess session.Session) bool {
	return ev.TenantID == sess.TenantID
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	evs, err := s.store.ListEvaluations(r.Context(), store.EvaluationFilter{
		QueryID:  chi.URLParam(r, "queryID"),
		TenantID: sess.TenantID,
		Limit:    intParam(r, "limit"),
		Offset:   intParam(r, "offset"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// The store treats an empty tenant filter as "any tenant".
	out := evs[:0]
	for i := range evs {
		if visible(&evs[i], sess) {
			out = append(out, evs[i])
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLatestEvaluation(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	ev, err := s.store.LatestEvaluation(r.Context(), sess.TenantID, chi.URLParam(r, "queryID"))
	s.respondEvaluation(w, r, ev, err)
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.GetEvaluation(r.Context(), chi.URLParam(r, "id"))
	s.respondEvaluation(w, r, ev, err)
}

func (s *Server) respondEvaluation(w http.ResponseWriter, r *http.Request, ev *evaluation.Evaluation, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !visible(ev, session.FromContext(r.Context())) {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
