// Package storage names and writes report artifacts.
package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

// Kind identifies one artifact of a report run.
type Kind int

const (
	GroupedReport Kind = iota
	ActivityReport
	HTMLReport
	PDFReport
	RawEntriesCSV
	ProcessedEntriesCSV
)

// FileName returns the artifact file name for an account, stamped with the
// generation date.
func FileName(kind Kind, accountID string, at time.Time) string {
	stamp := timecalc.DateStamp(at)
	switch kind {
	case GroupedReport:
		return fmt.Sprintf("company_%s_report_%s.docx", accountID, stamp)
	case ActivityReport:
		return fmt.Sprintf("activity_report_%s_%s.docx", accountID, stamp)
	case HTMLReport:
		return fmt.Sprintf("debug_report_%s_%s.html", accountID, stamp)
	case PDFReport:
		return fmt.Sprintf("debug_report_%s_%s.pdf", accountID, stamp)
	case RawEntriesCSV:
		return fmt.Sprintf("debug_raw_entries_%s_%s.csv", accountID, stamp)
	case ProcessedEntriesCSV:
		return fmt.Sprintf("debug_processed_entries_%s_%s.csv", accountID, stamp)
	}
	return fmt.Sprintf("artifact_%d_%s_%s", kind, accountID, stamp)
}

// WriteFile atomically writes data to dir/name, creating dir if needed, and
// returns the written path.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage error creating directories: %w", err)
	}
	path := filepath.Join(dir, name)

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return path, nil
}

var rawHeader = []string{
	"id", "timeStart", "timeEnd", "actualHours", "notes", "ticket_id", "ticket_summary",
	"member", "project", "ticketBoard", "ticketStatus", "workType",
}

// EncodeRawCSV writes entries as CSV with one column per API field.
func EncodeRawCSV(w io.Writer, entries []model.RawEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rawHeader); err != nil {
		return err
	}
	for _, e := range entries {
		var ticketID string
		if e.Ticket != nil {
			ticketID = e.Ticket.ID
		}
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.TimeStart,
			e.TimeEnd,
			strconv.FormatFloat(e.ActualHours, 'f', -1, 64),
			e.Notes,
			ticketID,
			e.TicketSummary(),
			name(e.Member),
			name(e.Project),
			e.TicketBoard,
			e.TicketStatus,
			name(e.WorkType),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func name(ref *model.NamedRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

var rowHeader = []string{
	"ticket_id", "ticket_summary", "date", "start_time", "end_time", "hours",
	"engineer", "work_type", "board", "status", "detail",
}

// EncodeRowsCSV writes normalized rows as CSV.
func EncodeRowsCSV(w io.Writer, rows []model.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rowHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.TicketID,
			r.TicketSummary,
			r.Date,
			r.StartTime,
			r.EndTime,
			strconv.FormatFloat(r.Hours, 'f', 2, 64),
			r.Engineer,
			r.WorkType,
			r.Board,
			r.Status,
			r.Detail,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
