package render

import (
	"fmt"

	"github.com/Tiliavir/cwr/internal/grouping"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/textfmt"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

const (
	bannerShade   = "E5F3E2"
	subtotalShade = "F2F2F2"
)

// groupedPage is A4 landscape with narrow side margins.
var groupedPage = pageSetup{
	width:  inches(11.69),
	height: inches(8.27),
	top:    inches(1),
	bottom: inches(1),
	left:   inches(0.4),
	right:  inches(0.4),
}

var groupedColumns = []string{"Date", "Start Time", "End Time", "Engineer", "Detail"}

// groupedWidths gives Detail half the usable width and splits the rest evenly.
func groupedWidths(page pageSetup) []int {
	usable := page.usableWidth()
	other := usable / 8
	return []int{other, other, other, other, usable / 2}
}

// GroupedDocument renders the support hours report: every ticketed row
// grouped by ticket, a page break, then all rows grouped by date.
func GroupedDocument(rows []model.Row, meta Meta) ([]byte, error) {
	d := newWordDoc(groupedPage, "Calibri", 11)
	d.title(fmt.Sprintf("%s Support Hours for %s", meta.Vendor, meta.Customer))
	if first, last := span(rows); !first.IsZero() {
		d.centered(fmt.Sprintf("Period: %s to %s", timecalc.FormatDate(first), timecalc.FormatDate(last)))
	}

	d.heading("Section 1: Time Entries By Ticket")
	byTicket := grouping.ByTicket(rows)
	groupedTable(d, byTicket, func(g grouping.Group) string {
		return fmt.Sprintf("%s Project Ticket #%s - %s", meta.Vendor, g.Key, textfmt.CleanTicketSummary(g.Rows[0].TicketSummary))
	})
	addTotal(d, byTicket.GrandTotalHours())

	d.pageBreak()

	d.heading("Section 2: Time Entries By Date")
	byDate := grouping.ByDate(rows)
	groupedTable(d, byDate, func(g grouping.Group) string { return g.Key })
	addTotal(d, byDate.GrandTotalHours())

	return d.bytes()
}

func groupedTable(d *wordDoc, report grouping.Report, banner func(grouping.Group) string) {
	widths := groupedWidths(groupedPage)
	cols := len(widths)

	var header []cell
	for _, name := range groupedColumns {
		header = append(header, cell{text: name, bold: true, shade: bannerShade})
	}
	rows := [][]cell{header}

	for _, line := range report.Lines() {
		var row []cell
		switch line.Kind {
		case grouping.HeaderLine:
			row = []cell{{text: banner(line.Group), span: cols, bold: true, shade: bannerShade}}
		case grouping.EntryLine:
			r := line.Row
			row = []cell{{text: r.Date}, {text: r.StartTime}, {text: r.EndTime}, {text: r.Engineer}, {text: r.Detail}}
		case grouping.SubtotalLine:
			row = []cell{
				{text: "Subtotal Hours:", span: cols - 1, bold: true, shade: subtotalShade},
				{text: grouping.FormatHours(line.Hours), bold: true, shade: subtotalShade},
			}
		case grouping.SeparatorLine:
			for range cols {
				row = append(row, cell{shade: subtotalShade})
			}
		}
		rows = append(rows, row)
	}
	d.table(widths, rows)
}

func addTotal(d *wordDoc, hours float64) {
	d.paragraph("Total Hours: "+grouping.FormatHours(hours), true, d.sizePt, "right")
}
