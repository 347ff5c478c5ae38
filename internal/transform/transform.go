// Package transform turns raw API entries into display rows.
package transform

import (
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/textfmt"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

// Normalize builds the display row for one entry. It never fails: missing or
// unparsable fields leave the matching row fields empty.
func Normalize(raw model.RawEntry) model.Row {
	row := model.Row{
		TicketSummary: raw.TicketSummary(),
		Hours:         raw.ActualHours,
		Detail:        textfmt.FormatDetail(raw.Notes, raw.Project),
		Notes:         raw.Notes,
		Board:         raw.TicketBoard,
		Status:        raw.TicketStatus,
	}
	if row.Hours < 0 {
		row.Hours = 0
	}
	if raw.Ticket != nil {
		row.TicketID = raw.Ticket.ID
	}
	if raw.Member != nil {
		row.Engineer = raw.Member.Name
	}
	if raw.WorkType != nil {
		row.WorkType = raw.WorkType.Name
	}
	if t, ok := timecalc.ParseUTC(raw.TimeStart); ok {
		row.Start = timecalc.InReportZone(t)
		row.Date = timecalc.FormatDate(row.Start)
		row.StartTime = timecalc.FormatClock(row.Start)
	}
	if t, ok := timecalc.ParseUTC(raw.TimeEnd); ok {
		row.End = timecalc.InReportZone(t)
		row.EndTime = timecalc.FormatClock(row.End)
	}
	return row
}

// NormalizeAll maps Normalize over entries, keeping their order.
func NormalizeAll(entries []model.RawEntry) []model.Row {
	rows := make([]model.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Normalize(e))
	}
	return rows
}
