package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/evaluation"
	"github.com/flowaudit/audit-engine/internal/format"
	"github.com/flowaudit/audit-engine/internal/groupquery"
)

type evaluateFlags struct {
	query     string
	responses string
	template  string
	history   string
	exclude   []string
	metric    string
	at        string
	xlsx      string
	save      bool
	asJSON    bool
	createdBy string
	tenantID  string
}

var evalFlags evaluateFlags

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the responses of a group query",
	Long:  "Aggregates submitted responses across authorities, computes statistics, rankings and the year-over-year trend, and optionally exports or archives the result.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ev, err := runEvaluation(evalFlags, cfg.EvaluationOptions())
		if err != nil {
			return err
		}

		if evalFlags.xlsx != "" {
			if err := exportEvaluation(ev, evalFlags.xlsx); err != nil {
				return err
			}
			zap.L().Info("evaluation exported", zap.String("path", evalFlags.xlsx))
		}

		if evalFlags.save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.SaveEvaluation(ctx, ev); err != nil {
				return eris.Wrap(err, "archive evaluation")
			}
			zap.L().Info("evaluation archived",
				zap.String("evaluation_id", ev.ID),
				zap.String("query_id", ev.QueryID),
			)
		}

		if evalFlags.asJSON {
			return writeJSON(os.Stdout, ev)
		}
		formatEvaluation(os.Stdout, ev)
		return nil
	},
}

// runEvaluation loads the inputs named by f and evaluates them on top of
// the configured defaults.
func runEvaluation(f evaluateFlags, opts evaluation.Options) (*evaluation.Evaluation, error) {
	q, now, err := loadQuery(f.query, f.at)
	if err != nil {
		return nil, err
	}
	if f.responses == "" {
		return nil, eris.New("--responses is required")
	}
	var responses []groupquery.Response
	if err := loadFile(f.responses, &responses); err != nil {
		return nil, err
	}

	if f.metric != "" {
		m, err := evaluation.ParseMetric(f.metric)
		if err != nil {
			return nil, err
		}
		opts.Metric = m
	}
	if f.template != "" {
		var tpl checklist.Template
		if err := loadFile(f.template, &tpl); err != nil {
			return nil, err
		}
		opts.Template = &tpl
	}
	if f.history != "" {
		if opts.History, err = loadHistory(f.history); err != nil {
			return nil, err
		}
	}
	opts.Excluded = f.exclude
	opts.Now = now
	opts.TenantID = f.tenantID
	if opts.TenantID == "" {
		opts.TenantID = q.TenantID
	}
	opts.CreatedBy = f.createdBy

	return evaluation.Evaluate(q, responses, opts)
}

// loadHistory reads earlier fiscal years from an XLSX workbook or a
// YAML/JSON list.
func loadHistory(path string) ([]evaluation.YearFigures, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return evaluation.ReadHistoryXLSX(path)
	}
	var hist []evaluation.YearFigures
	if err := loadFile(path, &hist); err != nil {
		return nil, err
	}
	return hist, nil
}

func exportEvaluation(ev *evaluation.Evaluation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := evaluation.ExportXLSX(ev, f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func formatEvaluation(out io.Writer, ev *evaluation.Evaluation) {
	res := ev.Results
	agg := res.AggregatedData
	amount, _ := format.FormatCurrency(agg.TotalAuditedAmount, "EUR")

	_, _ = fmt.Fprintf(out, "Auswertung %s (%s)\n", ev.QueryID, ev.CreatedAt.Format(time.DateTime))
	_, _ = fmt.Fprintf(out, "Rücklauf: %d von %d (%s)\n", res.RespondedAuthorities, res.TotalAuthorities,
		format.FormatPercent(res.ResponseRate*100, 1))
	_, _ = fmt.Fprintf(out, "Vorhaben: %s  Betrag: %s  Fehler: %s  Fehlerquote: %s\n",
		format.ForLocale("").Number(agg.TotalOperations, 0), amount,
		format.ForLocale("").Number(agg.TotalErrors, 0), format.FormatPercent(agg.WeightedErrorRate*100, 2))
	if len(ev.ExcludedAssignments) > 0 {
		_, _ = fmt.Fprintf(out, "Ausgeschlossen: %s\n", strings.Join(ev.ExcludedAssignments, ", "))
	}
	if ev.Trends != nil {
		_, _ = fmt.Fprintf(out, "Trend: %s\n", ev.Trends.Trend)
	}

	if len(ev.Comparisons) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "AUTHORITY\tOPERATIONS\tAMOUNT\tERROR_RATE\tRANK_ERR\tRANK_VOL\tRANK_COMPL")
	for _, c := range ev.Comparisons {
		amt, _ := format.FormatCurrency(c.Metrics.AuditedAmount, "EUR")
		_, _ = fmt.Fprintf(w, "%s\t%.0f\t%s\t%s\t%d\t%d\t%d\n",
			c.AuthorityName, c.Metrics.OperationsCount, amt,
			format.FormatPercent(c.Metrics.ErrorRate*100, 2),
			c.Rankings.ByErrorRate, c.Rankings.ByVolume, c.Rankings.ByCompleteness)
	}
	_ = w.Flush()
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evalFlags.query, "query", "", "group query file (yaml or json)")
	f.StringVar(&evalFlags.responses, "responses", "", "responses file (yaml or json list)")
	f.StringVar(&evalFlags.template, "template", "", "checklist template used to derive completion rates")
	f.StringVar(&evalFlags.history, "history", "", "earlier fiscal years (xlsx, yaml or json)")
	f.StringSliceVar(&evalFlags.exclude, "exclude", nil, "assignment ids to exclude")
	f.StringVar(&evalFlags.metric, "metric", "", "metric for the summary statistics (default from config)")
	f.StringVar(&evalFlags.at, "at", "", "evaluation time as RFC 3339 (default now)")
	f.StringVar(&evalFlags.xlsx, "xlsx", "", "write the evaluation to this XLSX file")
	f.BoolVar(&evalFlags.save, "save", false, "archive the evaluation in the configured store")
	f.BoolVar(&evalFlags.asJSON, "json", false, "print the evaluation as JSON")
	f.StringVar(&evalFlags.createdBy, "created-by", os.Getenv("USER"), "user recorded on the evaluation")
	f.StringVar(&evalFlags.tenantID, "tenant", "", "tenant recorded on the evaluation (default the query's tenant)")
	rootCmd.AddCommand(evaluateCmd)
}
