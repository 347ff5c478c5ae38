package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/storage"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export normalized time entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	addPeriodFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, yaml")
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case "csv", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want csv, json or yaml)", exportFormat)
	}
	rows, err := fetchRows(cmd)
	if err != nil {
		return err
	}
	return writeExport(os.Stdout, rows, exportFormat)
}

// writeExport encodes rows in the given format. Empty input still produces
// a valid document.
func writeExport(w io.Writer, rows []model.Row, format string) error {
	if rows == nil {
		rows = []model.Row{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "csv":
		return storage.EncodeRowsCSV(w, rows)
	}
	return fmt.Errorf("unknown format %q", format)
}
