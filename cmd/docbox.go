package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flowaudit/audit-engine/internal/docbox"
	"github.com/flowaudit/audit-engine/internal/format"
)

var docboxCmd = &cobra.Command{
	Use:   "docbox",
	Short: "Inspect document box verification results",
}

var docboxStatsCmd = &cobra.Command{
	Use:   "stats <box-file>",
	Short: "Tally manual and AI verification of a document box",
	Long:  "Reads a document box (or a bare list of documents with --documents) and prints its statistics.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var box docbox.Box
		bare, _ := cmd.Flags().GetBool("documents")
		if bare {
			if err := loadFile(args[0], &box.Documents); err != nil {
				return err
			}
		} else if err := loadFile(args[0], &box); err != nil {
			return err
		}
		box.Refresh()

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(os.Stdout, box.Statistics)
		}
		return formatBoxStatistics(os.Stdout, box.Statistics, docbox.StatusCounts(box.Documents))
	},
}

func formatBoxStatistics(out io.Writer, s docbox.Statistics, counts map[docbox.Status]int) error {
	total, err := format.FormatCurrency(s.TotalAmount, "EUR")
	if err != nil {
		return err
	}
	verified, _ := format.FormatCurrency(s.VerifiedAmount, "EUR")
	rejected, _ := format.FormatCurrency(s.RejectedAmount, "EUR")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Dokumente\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Geprüft\t%d\t%s\n", s.Verified, verified)
	_, _ = fmt.Fprintf(w, "Abgelehnt\t%d\t%s\n", s.Rejected, rejected)
	_, _ = fmt.Fprintf(w, "In Bearbeitung\t%d\n", s.InProgress)
	_, _ = fmt.Fprintf(w, "Offen\t%d\n", s.Pending)
	_, _ = fmt.Fprintf(w, "Summe\t\t%s\n", total)
	_, _ = fmt.Fprintln(w, "\t")
	_, _ = fmt.Fprintf(w, "KI verarbeitet\t%d\n", s.AIProcessed)
	_, _ = fmt.Fprintf(w, "KI freigegeben\t%d\n", s.AIApproved)
	_, _ = fmt.Fprintf(w, "KI abgelehnt\t%d\n", s.AIRejected)
	_, _ = fmt.Fprintf(w, "KI unklar\t%d\n", s.AIUnclear)
	_, _ = fmt.Fprintln(w, "\t")
	for _, st := range []docbox.Status{docbox.StatusVerified, docbox.StatusRejected, docbox.StatusUnclear, docbox.StatusPending} {
		_, _ = fmt.Fprintf(w, "Status %s\t%d\n", st, counts[st])
	}
	return w.Flush()
}

func init() {
	docboxStatsCmd.Flags().Bool("documents", false, "input is a list of documents instead of a box")
	docboxStatsCmd.Flags().Bool("json", false, "print statistics as JSON")
	docboxCmd.AddCommand(docboxStatsCmd)
	rootCmd.AddCommand(docboxCmd)
}
