package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

var batchConcurrency int

var checklistBatchCmd = &cobra.Command{
	Use:   "batch <instances-file>",
	Short: "Validate many checklist instances against one template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		idx, mode, err := loadIndex(checklistTemplate, checklistMode)
		if err != nil {
			return err
		}

		var instances []checklist.Instance
		if err := loadFile(args[0], &instances); err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		results, err := checklist.ValidateBatch(ctx, idx, mode, instances, concurrency)
		if err != nil {
			return err
		}

		zap.L().Info("batch validation complete",
			zap.Int("instances", len(results)),
			zap.Int("concurrency", concurrency),
		)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(os.Stdout, results)
		}
		formatBatchResults(os.Stdout, results)
		return nil
	},
}

func formatBatchResults(out io.Writer, results []checklist.BatchResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INSTANCE\tCOMPLETE\tERRORS\tSTALE")
	invalid := 0
	for _, r := range results {
		stale := ""
		if r.Stale {
			stale = "yes"
		}
		if len(r.Errors) > 0 {
			invalid++
		}
		_, _ = fmt.Fprintf(w, "%s\t%d%%\t%d\t%s\n", r.InstanceID, r.CompletionPercentage, len(r.Errors), stale)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\n%d instances, %d with errors\n", len(results), invalid)
}

func init() {
	checklistBatchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel validations (default batch.max_concurrent)")
	checklistBatchCmd.Flags().Bool("json", false, "print results as JSON")
	checklistCmd.AddCommand(checklistBatchCmd)
}
