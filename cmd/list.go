package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/cwr/internal/grouping"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/pipeline"
	"github.com/Tiliavir/cwr/internal/transform"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries grouped by date",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	addPeriodFlags(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	rows, err := fetchRows(cmd)
	if err != nil {
		return err
	}
	printList(os.Stdout, rows)
	return nil
}

// fetchRows resolves the period flags, fetches the entries and normalizes
// them. Upstream failures leave rows empty.
func fetchRows(cmd *cobra.Command) ([]model.Row, error) {
	from, to, err := resolvePeriod(time.Now(), periodDate, periodFrom, periodTo)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := pipeline.Fetch(ctx, client, from, to, accountID())
	if err != nil {
		return nil, err
	}
	return transform.NormalizeAll(entries), nil
}

// printList prints rows grouped by date with a subtotal per day.
func printList(w io.Writer, rows []model.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	report := grouping.ByDate(rows)
	for _, line := range report.Lines() {
		switch line.Kind {
		case grouping.HeaderLine:
			fmt.Fprintln(w, line.Group.Key)
		case grouping.EntryLine:
			r := line.Row
			ticket := "-"
			if r.TicketID != "" {
				ticket = "#" + r.TicketID
			}
			fmt.Fprintf(w, "  %s–%s  %-8s %s  %s (%sh)\n",
				r.StartTime, r.EndTime, ticket, r.Engineer, r.TicketSummary, grouping.FormatHours(r.Hours))
		case grouping.SubtotalLine:
			fmt.Fprintf(w, "  %s hours\n", grouping.FormatHours(line.Hours))
		case grouping.SeparatorLine:
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "\nTotal: %s hours\n", grouping.FormatHours(report.GrandTotalHours()))
}
