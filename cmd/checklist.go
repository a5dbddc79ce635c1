package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Validate checklist templates and responses",
}

var (
	checklistTemplate string
	checklistMode     string
)

// -- checklist validate --

var checklistValidateCmd = &cobra.Command{
	Use:   "validate <data-file>",
	Short: "Check response data against a template",
	Long:  "Prints completion, validation errors and field visibility. Exits non-zero when --strict is set and errors were found.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, mode, err := loadIndex(checklistTemplate, checklistMode)
		if err != nil {
			return err
		}

		var data checklist.Data
		if err := loadFile(args[0], &data); err != nil {
			return err
		}

		report := idx.Check(mode, data)
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			if err := writeJSON(os.Stdout, report); err != nil {
				return err
			}
		} else {
			formatReport(os.Stdout, report)
		}

		strict, _ := cmd.Flags().GetBool("strict")
		if strict && len(report.Errors) > 0 {
			return eris.Errorf("%d validation errors", len(report.Errors))
		}
		return nil
	},
}

// loadIndex reads, structurally validates and indexes a template.
func loadIndex(path, modeFlag string) (*checklist.Index, checklist.CompletionMode, error) {
	if path == "" {
		return nil, "", eris.New("--template is required")
	}
	modeName := modeFlag
	if modeName == "" && cfg != nil {
		modeName = cfg.Checklist.CompletionMode
	}
	mode, err := checklist.ParseCompletionMode(modeName)
	if err != nil {
		return nil, "", err
	}

	var tpl checklist.Template
	if err := loadFile(path, &tpl); err != nil {
		return nil, "", err
	}
	if err := checklist.ValidateTemplate(&tpl); err != nil {
		return nil, "", err
	}
	idx, err := checklist.NewIndex(&tpl)
	if err != nil {
		return nil, "", err
	}
	for _, warning := range idx.Warnings() {
		zap.L().Warn("checklist template warning", zap.String("template", path), zap.String("warning", warning))
	}
	return idx, mode, nil
}

func formatReport(out io.Writer, r checklist.Report) {
	_, _ = fmt.Fprintf(out, "Vollständigkeit: %d%%\n", r.CompletionPercentage)

	if len(r.Errors) == 0 {
		_, _ = fmt.Fprintln(out, "Keine Validierungsfehler.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "FIELD\tMESSAGE")
		for _, e := range r.Errors {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", e.Field, e.Message)
		}
		_ = w.Flush()
	}

	var hidden []string
	for name, visible := range r.Visibility {
		if !visible {
			hidden = append(hidden, name)
		}
	}
	sort.Strings(hidden)
	for _, name := range hidden {
		_, _ = fmt.Fprintf(out, "ausgeblendet: %s\n", name)
	}
	for _, warning := range r.Warnings {
		_, _ = fmt.Fprintf(out, "Warnung: %s\n", warning)
	}
}

func init() {
	checklistCmd.PersistentFlags().StringVar(&checklistTemplate, "template", "", "checklist template file (yaml or json)")
	checklistCmd.PersistentFlags().StringVar(&checklistMode, "mode", "", "completion mode: count_hidden or visible_only (default from config)")

	checklistValidateCmd.Flags().Bool("json", false, "print the report as JSON")
	checklistValidateCmd.Flags().Bool("strict", false, "fail when validation errors are found")

	checklistCmd.AddCommand(checklistValidateCmd)
	rootCmd.AddCommand(checklistCmd)
}
