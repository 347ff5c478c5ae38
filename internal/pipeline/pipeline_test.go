package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/connectwise"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/pipeline"
)

type fakeSource struct {
	entries []model.RawEntry
	err     error
	gotFrom time.Time
	gotTo   time.Time
	gotID   string
}

func (f *fakeSource) TimeEntries(_ context.Context, from, to time.Time, accountID string) ([]model.RawEntry, error) {
	f.gotFrom, f.gotTo, f.gotID = from, to, accountID
	return f.entries, f.err
}

func testConfig(dir string) config.Config {
	return config.Config{Report: config.ReportConfig{
		AccountID: "19301",
		OutputDir: dir,
		Vendor:    "iT360",
		Customer:  "Form Auckland",
		PDF:       true,
	}}
}

var (
	from = time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	to   = from.AddDate(0, 0, 5)
	now  = time.Date(2026, 2, 23, 9, 0, 0, 0, time.UTC)
)

func sampleEntries() []model.RawEntry {
	return []model.RawEntry{
		{
			TimeStart: "2026-02-16T20:00:00Z", TimeEnd: "2026-02-16T21:00:00Z", ActualHours: 1,
			Notes: "patched", Ticket: &model.TicketRef{ID: "1", Summary: "Patching"},
		},
		{
			TimeStart: "2026-02-17T20:00:00Z", TimeEnd: "2026-02-17T20:30:00Z", ActualHours: 0.5,
			Notes: "standup", Ticket: &model.TicketRef{ID: "2", Summary: "Meetings"},
		},
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{entries: sampleEntries()}
	cfg := testConfig(dir)
	cfg.Report.DebugDumps = true

	res, err := pipeline.Run(context.Background(), src, cfg, pipeline.Options{
		From: from, To: to, Now: now,
		ConvertPDF: func(context.Context, []byte) ([]byte, error) { return []byte("%PDF-1.4"), nil },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.NoData || res.Entries != 2 || len(res.Files) != 6 {
		t.Fatalf("result = %+v", res)
	}
	if src.gotID != "19301" || !src.gotFrom.Equal(from) || !src.gotTo.Equal(to) {
		t.Errorf("source called with %v %v %q", src.gotFrom, src.gotTo, src.gotID)
	}

	want := []string{
		"activity_report_19301_20260223.docx",
		"company_19301_report_20260223.docx",
		"debug_processed_entries_19301_20260223.csv",
		"debug_raw_entries_19301_20260223.csv",
		"debug_report_19301_20260223.html",
		"debug_report_19301_20260223.pdf",
	}
	got := listDir(t, dir)
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunPDFFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	res, err := pipeline.Run(context.Background(), &fakeSource{entries: sampleEntries()}, testConfig(dir), pipeline.Options{
		From: from, To: to, Now: now,
		ConvertPDF: func(context.Context, []byte) ([]byte, error) { return nil, errors.New("wkhtmltopdf not found") },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Files) != 3 {
		t.Errorf("files = %v, want html and two docx", res.Files)
	}
	if _, err := os.Stat(filepath.Join(dir, "debug_report_19301_20260223.html")); err != nil {
		t.Errorf("html report missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "debug_report_19301_20260223.pdf")); !os.IsNotExist(err) {
		t.Error("pdf should not exist")
	}
}

func TestRunAPIErrorMeansNoData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	src := &fakeSource{err: &connectwise.APIError{StatusCode: 401, Body: `{"code":"NotAuthenticated"}`}}

	res, err := pipeline.Run(context.Background(), src, testConfig(dir), pipeline.Options{From: from, To: to, Now: now})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.NoData || len(res.Files) != 0 {
		t.Errorf("result = %+v, want no data", res)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("output directory should not be created without data")
	}
}

func TestRunEmptyPeriod(t *testing.T) {
	res, err := pipeline.Run(context.Background(), &fakeSource{}, testConfig(t.TempDir()), pipeline.Options{From: from, To: to})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.NoData {
		t.Error("expected NoData for an empty period")
	}
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pipeline.Fetch(ctx, &fakeSource{err: context.Canceled}, from, to, "1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunWriteFailure(t *testing.T) {
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(blocker)
	cfg.Report.PDF = false
	if _, err := pipeline.Run(context.Background(), &fakeSource{entries: sampleEntries()}, cfg, pipeline.Options{From: from, To: to}); err == nil {
		t.Fatal("expected write error")
	}
}
