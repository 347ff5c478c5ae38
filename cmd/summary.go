package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/cwr/internal/grouping"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/textfmt"
)

const summaryWidth = 48

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show hours per ticket as a table",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	addPeriodFlags(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	rows, err := fetchRows(cmd)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, rows)
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = cellStyle.Bold(true)
)

// summaryTable builds one line per ticket group, a line for hours without a
// ticket when there are any, and the total.
func summaryTable(rows []model.Row) [][]string {
	byTicket := grouping.ByTicket(rows)
	var out [][]string
	for _, g := range byTicket.Groups {
		out = append(out, []string{
			"#" + g.Key,
			runewidth.Truncate(textfmt.CleanTicketSummary(g.Rows[0].TicketSummary), summaryWidth, "…"),
			strconv.Itoa(len(g.Rows)),
			grouping.FormatHours(g.SubtotalHours()),
		})
	}

	var total, unticketed float64
	var unticketedCount int
	for _, r := range rows {
		total += r.Hours
		if r.TicketID == "" {
			unticketed += r.Hours
			unticketedCount++
		}
	}
	if unticketedCount > 0 {
		out = append(out, []string{"-", "(no ticket)", strconv.Itoa(unticketedCount), grouping.FormatHours(unticketed)})
	}
	out = append(out, []string{"Total", "", strconv.Itoa(len(rows)), grouping.FormatHours(total)})
	return out
}

func printSummary(w io.Writer, rows []model.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	data := summaryTable(rows)
	last := len(data) - 1
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Ticket", "Summary", "Entries", "Hours").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last:
				style = totalStyle
			}
			if col >= 2 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	fmt.Fprintln(w, t.Render())
}
