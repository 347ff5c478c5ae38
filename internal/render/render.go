// Package render lays out normalized rows as documents: the grouped support
// hours report, the flat activity report, and the HTML report with its PDF.
package render

import (
	"time"

	"github.com/Tiliavir/cwr/internal/model"
)

// Meta carries the names and identifiers printed around the rows.
type Meta struct {
	// Vendor prefixes ticket banners, e.g. "iT360".
	Vendor string
	// Customer is named in the grouped report title.
	Customer    string
	AccountID   string
	GeneratedAt time.Time
}

func span(rows []model.Row) (first, last time.Time) {
	for _, r := range rows {
		if r.Start.IsZero() {
			continue
		}
		if first.IsZero() || r.Start.Before(first) {
			first = r.Start
		}
		if last.IsZero() || r.Start.After(last) {
			last = r.Start
		}
	}
	return first, last
}
