package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/connectwise"
	"github.com/Tiliavir/cwr/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// cfg is loaded once flags are parsed.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cwr",
	Short: "ConnectWise time entry reports",
	Long: `cwr fetches time entries from ConnectWise Manage and turns them into
customer reports: a grouped support hours document, a per-entry activity
document and an HTML/PDF report. Settings live in ~/.cwr/config.json.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Log.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cwr/config.json)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "info", "Set log level. Available: debug, info, warn, error")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := logging.SetLevel(logLevel); err != nil {
		return err
	}
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// newClient validates the loaded config and builds the API client.
func newClient(ctx context.Context) (*connectwise.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return connectwise.NewClient(ctx, cfg.ConnectWise)
}
