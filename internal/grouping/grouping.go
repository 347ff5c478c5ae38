// Package grouping splits rows into ticket or date groups with subtotals.
//
// Two algorithms coexist. Sequential starts a new group whenever the key
// changes between neighbours, so a key that reappears later opens a second
// group; ByTicket and ByDate sort first and then group sequentially.
// ByTicketKey is a plain group-by used by the HTML report.
package grouping

import (
	"cmp"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

// Group is a run of rows sharing a key.
type Group struct {
	Key  string
	Rows []model.Row
}

// SubtotalHours sums the hours of the group's rows.
func (g Group) SubtotalHours() float64 {
	var total float64
	for _, r := range g.Rows {
		total += r.Hours
	}
	return total
}

// Report is an ordered list of groups.
type Report struct {
	Groups []Group
}

// GrandTotalHours sums the subtotals of all groups.
func (r Report) GrandTotalHours() float64 {
	var total float64
	for _, g := range r.Groups {
		total += g.SubtotalHours()
	}
	return total
}

// LineKind tells a renderer how to draw a Line.
type LineKind int

const (
	HeaderLine LineKind = iota
	EntryLine
	SubtotalLine
	SeparatorLine
)

func (k LineKind) String() string {
	switch k {
	case HeaderLine:
		return "header"
	case EntryLine:
		return "entry"
	case SubtotalLine:
		return "subtotal"
	case SeparatorLine:
		return "separator"
	}
	return "LineKind(" + strconv.Itoa(int(k)) + ")"
}

// Line is one element of the rendered sequence. Group is set on every kind
// but the separator; Row only on entries; Hours only on subtotals.
type Line struct {
	Kind  LineKind
	Group Group
	Row   model.Row
	Hours float64
}

// Lines flattens the report: for each group a header, its rows and a
// subtotal, with a separator between consecutive groups.
func (r Report) Lines() []Line {
	var lines []Line
	for i, g := range r.Groups {
		if i > 0 {
			lines = append(lines, Line{Kind: SeparatorLine})
		}
		lines = append(lines, Line{Kind: HeaderLine, Group: g})
		for _, row := range g.Rows {
			lines = append(lines, Line{Kind: EntryLine, Group: g, Row: row})
		}
		lines = append(lines, Line{Kind: SubtotalLine, Group: g, Hours: g.SubtotalHours()})
	}
	return lines
}

// FormatHours renders hours with two decimals.
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

// Sequential groups rows by key without reordering them.
func Sequential(rows []model.Row, key func(model.Row) string) []Group {
	var groups []Group
	for _, row := range rows {
		k := key(row)
		if n := len(groups); n > 0 && groups[n-1].Key == k {
			groups[n-1].Rows = append(groups[n-1].Rows, row)
			continue
		}
		groups = append(groups, Group{Key: k, Rows: []model.Row{row}})
	}
	return groups
}

// ByTicket drops rows without a ticket, orders the rest by ticket id, newest
// day first, then start time, and groups them by ticket id.
func ByTicket(rows []model.Row) Report {
	sorted := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.TicketID != "" {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := compareTicketIDs(a.TicketID, b.TicketID); c != 0 {
			return c < 0
		}
		da, db := day(a), day(b)
		if !da.Equal(db) {
			return da.After(db)
		}
		return a.Start.Before(b.Start)
	})
	return Report{Groups: Sequential(sorted, func(r model.Row) string { return r.TicketID })}
}

// ByDate orders rows by day and start time and groups them by date.
func ByDate(rows []model.Row) Report {
	sorted := make([]model.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		da, db := day(a), day(b)
		if !da.Equal(db) {
			return da.Before(db)
		}
		return a.Start.Before(b.Start)
	})
	return Report{Groups: Sequential(sorted, func(r model.Row) string { return r.Date })}
}

// ByTicketKey groups rows by ticket id in order of first appearance. Rows
// without a ticket are skipped.
func ByTicketKey(rows []model.Row) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range rows {
		if r.TicketID == "" {
			continue
		}
		i, ok := index[r.TicketID]
		if !ok {
			i = len(groups)
			index[r.TicketID] = i
			groups = append(groups, Group{Key: r.TicketID})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

func day(r model.Row) time.Time {
	if r.Start.IsZero() {
		return time.Time{}
	}
	return timecalc.StartOfDay(r.Start)
}

// compareTicketIDs orders numeric ids by value, before any non-numeric id.
func compareTicketIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
