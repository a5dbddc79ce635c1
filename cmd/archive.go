package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/flowaudit/audit-engine/internal/evaluation"
	"github.com/flowaudit/audit-engine/internal/format"
	"github.com/flowaudit/audit-engine/internal/store"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived evaluations",
	Long:  "Commands for listing and viewing evaluations stored with evaluate --save or through the API.",
}

// -- archive list --

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived evaluations, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		queryID, _ := cmd.Flags().GetString("query")
		tenant, _ := cmd.Flags().GetString("tenant")
		limit, _ := cmd.Flags().GetInt("limit")

		evs, err := st.ListEvaluations(ctx, store.EvaluationFilter{
			QueryID:  queryID,
			TenantID: tenant,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "archive list")
		}

		if len(evs) == 0 {
			fmt.Fprintln(os.Stderr, "No evaluations found.")
			return nil
		}

		formatEvaluationList(os.Stdout, evs)
		return nil
	},
}

// -- archive show --

var archiveShowCmd = &cobra.Command{
	Use:   "show <evaluation-id>",
	Short: "Show an archived evaluation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ev, err := st.GetEvaluation(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "archive show")
		}
		return writeJSON(os.Stdout, ev)
	},
}

// -- archive latest --

var archiveLatestCmd = &cobra.Command{
	Use:   "latest <query-id>",
	Short: "Show the evaluation that supersedes all others for a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		tenant, _ := cmd.Flags().GetString("tenant")
		ev, err := st.LatestEvaluation(ctx, tenant, args[0])
		if err != nil {
			return eris.Wrap(err, "archive latest")
		}
		return writeJSON(os.Stdout, ev)
	},
}

// -- migrate --

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the evaluation archive schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		fmt.Fprintf(os.Stderr, "Archive schema ready (%s).\n", cfg.Store.Driver)
		return nil
	},
}

func formatEvaluationList(out io.Writer, evs []evaluation.Evaluation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tQUERY\tTENANT\tCREATED\tRESPONDED\tERROR_RATE")
	for _, ev := range evs {
		id := ev.ID
		if len(id) > 8 {
			id = id[:8]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			id, ev.QueryID, ev.TenantID,
			ev.CreatedAt.Format("2006-01-02 15:04"),
			ev.Results.RespondedAuthorities, ev.Results.TotalAuthorities,
			format.FormatPercent(ev.Results.AggregatedData.WeightedErrorRate*100, 2),
		)
	}
	_ = w.Flush()
}

func init() {
	archiveListCmd.Flags().String("query", "", "filter by group query id")
	archiveListCmd.Flags().String("tenant", "", "filter by tenant id")
	archiveListCmd.Flags().Int("limit", 20, "max number of evaluations to show")
	archiveLatestCmd.Flags().String("tenant", "", "tenant that owns the evaluations")

	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archiveLatestCmd)
	rootCmd.AddCommand(archiveCmd, migrateCmd)
}
