package timecalc

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

// ReportZone is the IANA zone every report date and time is shown in.
const ReportZone = "Pacific/Auckland"

const (
	dateLayout     = "Monday 02/01/2006"
	clockLayout    = "03:04 PM"
	isoDateLayout  = "2006-01-02"
	dashDateLayout = "02-01-2006"
	stampLayout    = "20060102"
)

var (
	zoneOnce sync.Once
	zone     *time.Location
)

// Auckland returns the report location. The zone database is embedded, so a
// failed lookup means a broken build and panics.
func Auckland() *time.Location {
	zoneOnce.Do(func() {
		loc, err := time.LoadLocation(ReportZone)
		if err != nil {
			panic(fmt.Sprintf("timecalc: loading %s: %v", ReportZone, err))
		}
		zone = loc
	})
	return zone
}

// ParseUTC parses an API timestamp such as "2026-02-27T09:00:00Z". Offsets and
// fractional seconds are accepted; a timestamp without zone is read as UTC.
func ParseUTC(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InReportZone converts t to Pacific/Auckland.
func InReportZone(t time.Time) time.Time {
	return t.In(Auckland())
}

// FormatDate renders the weekday and day/month/year, e.g. "Friday 27/02/2026".
func FormatDate(t time.Time) string { return t.Format(dateLayout) }

// FormatClock renders a 12-hour time of day, e.g. "09:05 AM".
func FormatClock(t time.Time) string { return t.Format(clockLayout) }

// FormatISODate renders "2006-01-02".
func FormatISODate(t time.Time) string { return t.Format(isoDateLayout) }

// FormatDashDate renders "02-01-2006".
func FormatDashDate(t time.Time) string { return t.Format(dashDateLayout) }

// DateStamp renders the YYYYMMDD stamp used in artifact file names.
func DateStamp(t time.Time) string { return t.Format(stampLayout) }

// ParseDate parses a YYYY-MM-DD flag value as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(isoDateLayout, s, loc)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekRange returns Monday 00:00 of the ISO week containing t and the following
// Monday 00:00 (exclusive end).
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, monday.AddDate(0, 0, 7)
}

// PreviousWorkWeek returns Monday 00:00 of the week before the one containing
// now, and the Saturday 00:00 after it (exclusive), both in the report zone.
func PreviousWorkWeek(now time.Time) (time.Time, time.Time) {
	monday, _ := WeekRange(InReportZone(now))
	from := monday.AddDate(0, 0, -7)
	return from, from.AddDate(0, 0, 5)
}
