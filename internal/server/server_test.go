package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/server"
)

type stubSource struct {
	entries  []model.RawEntry
	err      error
	from, to time.Time
	account  string
}

func (s *stubSource) TimeEntries(_ context.Context, from, to time.Time, accountID string) ([]model.RawEntry, error) {
	s.from, s.to, s.account = from, to, accountID
	return s.entries, s.err
}

var reportCfg = config.ReportConfig{AccountID: "19301", Vendor: "iT360", Customer: "Form Auckland"}

func get(t *testing.T, s *server.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, server.NewServer(&stubSource{}, reportCfg), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestTimeEntries(t *testing.T) {
	src := &stubSource{entries: []model.RawEntry{{ID: 5, Notes: "hi", Ticket: &model.TicketRef{ID: "9"}}}}
	s := server.NewServer(src, reportCfg)

	rec := get(t, s, "/time-entries?startDate=2026-02-15T11:00:00.000Z&endDate=2026-02-20T11:00:00.000Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var got []model.RawEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 5 || got[0].Ticket.ID != "9" {
		t.Errorf("entries = %+v", got)
	}
	if src.account != "19301" {
		t.Errorf("account = %q", src.account)
	}
	// 11:00Z is midnight in Auckland
	if got := src.from.Format("2006-01-02 15:04"); got != "2026-02-16 00:00" {
		t.Errorf("from = %s", got)
	}
}

func TestTimeEntriesPlainDates(t *testing.T) {
	src := &stubSource{}
	rec := get(t, server.NewServer(src, reportCfg), "/time-entries?startDate=2026-02-16&endDate=2026-02-21")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
	if got := src.to.Format("2006-01-02"); got != "2026-02-21" {
		t.Errorf("to = %s", got)
	}
}

func TestTimeEntriesUpstreamFailure(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	rec := get(t, server.NewServer(src, reportCfg), "/time-entries?startDate=2026-02-16&endDate=2026-02-21")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestTimeEntriesBadRequest(t *testing.T) {
	s := server.NewServer(&stubSource{}, reportCfg)
	for _, target := range []string{
		"/time-entries",
		"/time-entries?startDate=2026-02-16",
		"/time-entries?startDate=yesterday&endDate=2026-02-21",
		"/time-entries?startDate=2026-02-21&endDate=2026-02-16",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestReportHTML(t *testing.T) {
	src := &stubSource{entries: []model.RawEntry{
		{TimeStart: "2026-02-16T20:00:00Z", ActualHours: 1.5, Ticket: &model.TicketRef{ID: "42", Summary: "Printer"}},
	}}
	rec := get(t, server.NewServer(src, reportCfg), "/report.html?startDate=2026-02-16&endDate=2026-02-21")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Find("div.ticket h2").Text(); got != "Ticket #42" {
		t.Errorf("heading = %q", got)
	}
	if got := doc.Find(".totals").Text(); !strings.Contains(got, "1.50") {
		t.Errorf("totals = %q", got)
	}
}
