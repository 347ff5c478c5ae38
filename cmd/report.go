package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/cwr/internal/logging"
	"github.com/Tiliavir/cwr/internal/pipeline"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

var (
	reportOut        string
	reportNoPDF      bool
	reportDebugDumps bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the customer reports for a period",
	Long: `Fetch the account's time entries for the period and write the grouped
support hours document, the activity document, and the HTML report with its
PDF to the output directory. Without period flags the previous work week is
reported.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	addPeriodFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output directory (overrides report.output_dir)")
	reportCmd.Flags().BoolVar(&reportNoPDF, "no-pdf", false, "Skip the PDF conversion")
	reportCmd.Flags().BoolVar(&reportDebugDumps, "debug-dumps", false, "Also write raw and processed entries as CSV")
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now().In(timecalc.Auckland())
	from, to, err := resolvePeriod(now, periodDate, periodFrom, periodTo)
	if err != nil {
		return err
	}

	cfg.Report.AccountID = accountID()
	if reportOut != "" {
		cfg.Report.OutputDir = reportOut
	}
	if reportNoPDF {
		cfg.Report.PDF = false
	}
	if reportDebugDumps {
		cfg.Report.DebugDumps = true
	}

	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	logging.Log.Infof("generating report for %s to %s (company %s)",
		timecalc.FormatDate(from), timecalc.FormatDate(to.AddDate(0, 0, -1)), cfg.Report.AccountID)

	res, err := pipeline.Run(ctx, client, cfg, pipeline.Options{From: from, To: to, Now: now})
	if err != nil {
		return err
	}
	if res.NoData {
		fmt.Println("No time entries found for this period!")
		return nil
	}
	fmt.Printf("%d time entries reported:\n", res.Entries)
	for _, f := range res.Files {
		fmt.Printf("  %s\n", f)
	}
	return nil
}
