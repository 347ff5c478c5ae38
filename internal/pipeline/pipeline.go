// Package pipeline runs one report: fetch entries for a period, normalize
// them and write every artifact to the output directory.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/connectwise"
	"github.com/Tiliavir/cwr/internal/logging"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/render"
	"github.com/Tiliavir/cwr/internal/storage"
	"github.com/Tiliavir/cwr/internal/transform"
)

// Source supplies raw time entries for one account starting in [from, to).
type Source interface {
	TimeEntries(ctx context.Context, from, to time.Time, accountID string) ([]model.RawEntry, error)
}

// Options are the per-run inputs that do not come from the config file.
type Options struct {
	From, To time.Time
	// Now stamps file names and the HTML header.
	Now time.Time
	// ConvertPDF turns the HTML report into a PDF. Nil means render.PDF.
	ConvertPDF func(ctx context.Context, html []byte) ([]byte, error)
}

// Result describes a finished run.
type Result struct {
	// NoData is set when nothing was fetched; no files are written then.
	NoData  bool
	Entries int
	Files   []string
}

// Fetch loads entries from src. Upstream failures are logged, with the
// response body for API errors, and yield no entries rather than an error.
// Only a cancelled or expired context is returned as an error.
func Fetch(ctx context.Context, src Source, from, to time.Time, accountID string) ([]model.RawEntry, error) {
	entries, err := src.TimeEntries(ctx, from, to, accountID)
	if err == nil {
		return entries, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var apiErr *connectwise.APIError
	if errors.As(err, &apiErr) {
		logging.Log.WithField("status", apiErr.StatusCode).Errorf("error in API request, response content: %s", apiErr.Body)
	} else {
		logging.Log.Errorf("error in API request: %v", err)
	}
	return nil, nil
}

// Run executes the report for the account in cfg.Report.
func Run(ctx context.Context, src Source, cfg config.Config, opts Options) (Result, error) {
	rc := cfg.Report
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	convert := opts.ConvertPDF
	if convert == nil {
		convert = render.PDF
	}

	entries, err := Fetch(ctx, src, opts.From, opts.To, rc.AccountID)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		logging.Log.Warn("no time entries found for this period")
		return Result{NoData: true}, nil
	}
	logging.Log.Infof("fetched %d time entries", len(entries))

	res := Result{Entries: len(entries)}
	write := func(kind storage.Kind, data []byte) error {
		path, err := storage.WriteFile(rc.OutputDir, storage.FileName(kind, rc.AccountID, opts.Now), data)
		if err != nil {
			return err
		}
		logging.Log.Infof("saved %s", path)
		res.Files = append(res.Files, path)
		return nil
	}

	rows := transform.NormalizeAll(entries)

	if rc.DebugDumps {
		var raw, processed bytes.Buffer
		if err := storage.EncodeRawCSV(&raw, entries); err != nil {
			return res, fmt.Errorf("encoding raw entries: %w", err)
		}
		if err := write(storage.RawEntriesCSV, raw.Bytes()); err != nil {
			return res, err
		}
		if err := storage.EncodeRowsCSV(&processed, rows); err != nil {
			return res, fmt.Errorf("encoding processed entries: %w", err)
		}
		if err := write(storage.ProcessedEntriesCSV, processed.Bytes()); err != nil {
			return res, err
		}
	}

	meta := render.Meta{
		Vendor:      rc.Vendor,
		Customer:    rc.Customer,
		AccountID:   rc.AccountID,
		GeneratedAt: opts.Now,
	}

	html, err := render.HTML(rows, meta)
	if err != nil {
		return res, err
	}
	if err := write(storage.HTMLReport, html); err != nil {
		return res, err
	}
	if rc.PDF {
		if pdf, err := convert(ctx, html); err != nil {
			logging.Log.Warnf("could not generate PDF: %v", err)
		} else if err := write(storage.PDFReport, pdf); err != nil {
			return res, err
		}
	}

	grouped, err := render.GroupedDocument(rows, meta)
	if err != nil {
		return res, fmt.Errorf("rendering grouped report: %w", err)
	}
	if err := write(storage.GroupedReport, grouped); err != nil {
		return res, err
	}

	activity, err := render.FlatDocument(rows, meta)
	if err != nil {
		return res, fmt.Errorf("rendering activity report: %w", err)
	}
	if err := write(storage.ActivityReport, activity); err != nil {
		return res, err
	}
	return res, nil
}
