package render

import (
	"slices"
	"strings"

	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/textfmt"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

const labelShade = "CCFFCC"

var flatWidths = []int{1800, 7920}

// excludedFromActivity lists summary words that keep an entry out of the
// activity report. Matching ignores case.
var excludedFromActivity = []string{"meetings", "documentation"}

func excluded(summary string) bool {
	s := strings.ToLower(summary)
	for _, w := range excludedFromActivity {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FlatDocument renders the weekly activity report: one two-column table per
// entry in start order, skipping meeting and documentation tickets.
func FlatDocument(rows []model.Row, meta Meta) ([]byte, error) {
	var kept []model.Row
	for _, r := range rows {
		if !excluded(r.TicketSummary) {
			kept = append(kept, r)
		}
	}
	slices.SortStableFunc(kept, func(a, b model.Row) int {
		return a.Start.Compare(b.Start)
	})

	d := newWordDoc(letterPage, "Arial", 10)
	d.title("Weekly Activity Report")
	if len(kept) > 0 {
		first, last := kept[0].Start, kept[len(kept)-1].Start
		d.centered(timecalc.FormatDashDate(first) + " to " + timecalc.FormatDashDate(last))
	}

	for _, r := range kept {
		d.blank()
		d.table(flatWidths, entryRows(r, meta.Vendor))
	}
	return d.bytes()
}

func entryRows(r model.Row, vendor string) [][]cell {
	date := ""
	if !r.Start.IsZero() {
		date = timecalc.FormatDashDate(r.Start)
	}
	fields := []struct{ label, value string }{
		{"Date", date},
		{"Start Time", r.StartTime},
		{"End Time", r.EndTime},
		{vendor + " Ticket Ref", orNA(r.TicketID)},
		{"Site Name", textfmt.CleanTicketSummary(r.TicketSummary)},
		{"Engineer", orNA(r.Engineer)},
		{"Detail", strings.Join(textfmt.DashLines(r.Notes), "\n")},
	}
	rows := make([][]cell, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []cell{{text: f.label, bold: true, shade: labelShade}, {text: f.value}})
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return textfmt.NotAvailable
	}
	return s
}
