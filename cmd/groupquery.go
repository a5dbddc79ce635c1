package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/format"
	"github.com/flowaudit/audit-engine/internal/groupquery"
)

var groupqueryCmd = &cobra.Command{
	Use:     "groupquery",
	Aliases: []string{"gq"},
	Short:   "Track group queries sent to authorities",
}

var (
	gqQuery string
	gqAt    string
)

// -- groupquery status --

var groupqueryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the derived state of a group query",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q, now, err := loadQuery(gqQuery, gqAt)
		if err != nil {
			return err
		}
		report := groupquery.Summarize(q, now)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(os.Stdout, report)
		}
		formatQueryStatus(os.Stdout, q, report)
		return nil
	},
}

// -- groupquery check --

var groupqueryCheckCmd = &cobra.Command{
	Use:   "check <response-file>",
	Short: "Apply a query's validation rules and attachment requirements to a response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _, err := loadQuery(gqQuery, gqAt)
		if err != nil {
			return err
		}
		var resp groupquery.Response
		if err := loadFile(args[0], &resp); err != nil {
			return err
		}

		errs, err := groupquery.ValidateResponse(q, groupquery.CurrentData(&resp))
		if err != nil {
			return err
		}
		var missing []groupquery.AttachmentRequirement
		a := q.Assignment(resp.AssignmentID)
		if a != nil {
			missing = groupquery.MissingAttachments(q, a)
		}
		formatResponseCheck(os.Stdout, errs, missing)
		if a != nil {
			formatNextSteps(os.Stdout, a)
		}

		if len(errs) > 0 || len(missing) > 0 {
			return eris.Errorf("response %s: %d rule violations, %d missing attachments", resp.ID, len(errs), len(missing))
		}
		return nil
	},
}

// -- groupquery advance --

var groupqueryAdvanceCmd = &cobra.Command{
	Use:   "advance <assignment-id> <event>",
	Short: "Check an assignment status change against the assignment lifecycle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _, err := loadQuery(gqQuery, gqAt)
		if err != nil {
			return err
		}
		a, err := advanceAssignment(q, args[0], groupquery.Event(args[1]))
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(os.Stdout, a)
		}
		_, _ = fmt.Fprintf(os.Stdout, "%s: %s\n", a.ID, a.Status)
		formatNextSteps(os.Stdout, a)
		return nil
	},
}

// advanceAssignment applies e to a copy of the assignment with the given id.
// The query itself is left untouched.
func advanceAssignment(q *groupquery.GroupQuery, id string, e groupquery.Event) (*groupquery.Assignment, error) {
	a := q.Assignment(id)
	if a == nil {
		return nil, eris.Errorf("assignment %q not found in query %s", id, q.ID)
	}
	to, err := groupquery.Transition(a.Status, e)
	if err != nil {
		return nil, eris.Wrapf(err, "assignment %s", id)
	}
	next := *a
	next.Status = to
	return &next, nil
}

// loadQuery reads a query file and resolves the reference time. An empty
// at means now.
func loadQuery(path, at string) (*groupquery.GroupQuery, time.Time, error) {
	if path == "" {
		return nil, time.Time{}, eris.New("--query is required")
	}
	now := time.Now().UTC()
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, time.Time{}, eris.Wrap(err, "parse --at")
		}
		now = t
	}
	var q groupquery.GroupQuery
	if err := loadFile(path, &q); err != nil {
		return nil, time.Time{}, err
	}
	return &q, now, nil
}

func formatQueryStatus(out io.Writer, q *groupquery.GroupQuery, r groupquery.StatusReport) {
	_, _ = fmt.Fprintf(out, "%s (%s)\n", q.Title, q.ID)
	_, _ = fmt.Fprintf(out, "Frist: %s", format.FormatDateTime(q.Deadline))
	switch {
	case r.Overdue:
		_, _ = fmt.Fprint(out, "  ÜBERFÄLLIG")
	case r.DaysUntilDeadline != nil:
		_, _ = fmt.Fprintf(out, "  noch %d Tage", *r.DaysUntilDeadline)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Eingereicht: %d von %d (%s)\n",
		r.SubmittedCount, len(q.Assignments), format.FormatPercent(float64(r.ProgressPercentage), 0))
	_, _ = fmt.Fprintf(out, "Auswertung möglich: %s\n", yesNo(r.CanEvaluate))
	_, _ = fmt.Fprintf(out, "Erinnerung fällig: %s\n", yesNo(r.ReminderDue))

	if len(r.PendingAuthorities) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ASSIGNMENT\tAUTHORITY\tSTATUS\tPROGRESS")
	for _, a := range r.PendingAuthorities {
		name := a.AuthorityName
		if name == "" {
			name = a.AuthorityID
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\n", a.ID, name, a.Status, groupquery.CalculateProgress(&a))
	}
	_ = w.Flush()
}

func formatResponseCheck(out io.Writer, errs []checklist.ValidationError, missing []groupquery.AttachmentRequirement) {
	if len(errs) == 0 && len(missing) == 0 {
		_, _ = fmt.Fprintln(out, "Antwort vollständig.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tMESSAGE")
	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", e.Field, e.Message)
	}
	for _, m := range missing {
		_, _ = fmt.Fprintf(w, "%s\tAnlage fehlt: %s\n", m.ID, m.Name)
	}
	_ = w.Flush()
}

// formatNextSteps lists the events the assignment accepts and where each
// one leads.
func formatNextSteps(out io.Writer, a *groupquery.Assignment) {
	events := groupquery.Events(a.Status)
	if len(events) == 0 {
		_, _ = fmt.Fprintf(out, "Keine weiteren Schritte für %s (%s).\n", a.ID, a.Status)
		return
	}
	_, _ = fmt.Fprintf(out, "Nächste Schritte für %s (%s):\n", a.ID, a.Status)
	for _, e := range events {
		to, err := groupquery.Transition(a.Status, e)
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(out, "  %s -> %s\n", e, to)
	}
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nein"
}

func init() {
	groupqueryCmd.PersistentFlags().StringVar(&gqQuery, "query", "", "group query file (yaml or json)")
	groupqueryCmd.PersistentFlags().StringVar(&gqAt, "at", "", "reference time as RFC 3339 (default now)")
	groupqueryStatusCmd.Flags().Bool("json", false, "print the status as JSON")
	groupqueryAdvanceCmd.Flags().Bool("json", false, "print the advanced assignment as JSON")

	groupqueryCmd.AddCommand(groupqueryStatusCmd, groupqueryCheckCmd, groupqueryAdvanceCmd)
	rootCmd.AddCommand(groupqueryCmd)
}
