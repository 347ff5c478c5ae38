package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/cwr/internal/timecalc"
)

var (
	periodFrom    string
	periodTo      string
	periodDate    string
	periodAccount string
)

// addPeriodFlags registers the flags every fetching command shares.
func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&periodFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	cmd.Flags().StringVar(&periodTo, "to", "", "Last date to include (YYYY-MM-DD); defaults to today")
	cmd.Flags().StringVar(&periodDate, "date", "", "Report a single date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&periodAccount, "account", "", "Company id to report on (overrides report.account_id)")
}

// resolvePeriod turns the period flags into [from, to) in the report zone.
// Without flags it is the previous Monday to Friday.
func resolvePeriod(now time.Time, date, fromFlag, toFlag string) (time.Time, time.Time, error) {
	loc := timecalc.Auckland()
	switch {
	case date != "":
		d, err := timecalc.ParseDate(date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		return d, d.AddDate(0, 0, 1), nil

	case fromFlag != "" || toFlag != "":
		if fromFlag == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := timecalc.ParseDate(fromFlag, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value %q: %w", fromFlag, err)
		}
		last := timecalc.StartOfDay(timecalc.InReportZone(now))
		if toFlag != "" {
			last, err = timecalc.ParseDate(toFlag, loc)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value %q: %w", toFlag, err)
			}
		}
		to := last.AddDate(0, 0, 1)
		if !to.After(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toFlag, fromFlag)
		}
		return from, to, nil
	}

	from, to := timecalc.PreviousWorkWeek(now)
	return from, to, nil
}

// accountID returns --account or the configured account.
func accountID() string {
	if periodAccount != "" {
		return periodAccount
	}
	return cfg.Report.AccountID
}
