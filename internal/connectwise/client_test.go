package connectwise_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/connectwise"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

func basicConfig(baseURL string) config.ConnectWiseConfig {
	return config.ConnectWiseConfig{
		BaseURL:    baseURL,
		Company:    "it360",
		PublicKey:  "pub",
		PrivateKey: "priv",
		ClientID:   "client-123",
		Auth:       config.AuthBasic,
		PageSize:   2,
	}
}

func TestConditions(t *testing.T) {
	nz := timecalc.Auckland()
	tests := []struct {
		name     string
		from, to time.Time
		want     string
	}{
		{
			name: "utc bounds",
			from: time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC),
			want: "company/id=19301 and timeStart>=[2026-02-16T00:00:00Z] and timeStart<[2026-02-21T00:00:00Z]",
		},
		{
			// Monday to Saturday midnight NZDT is 11:00 UTC the day before
			name: "auckland work week",
			from: time.Date(2026, 2, 16, 0, 0, 0, 0, nz),
			to:   time.Date(2026, 2, 21, 0, 0, 0, 0, nz),
			want: "company/id=19301 and timeStart>=[2026-02-15T11:00:00Z] and timeStart<[2026-02-20T11:00:00Z]",
		},
		{
			name: "auckland winter",
			from: time.Date(2026, 7, 6, 0, 0, 0, 0, nz),
			to:   time.Date(2026, 7, 11, 0, 0, 0, 0, nz),
			want: "company/id=19301 and timeStart>=[2026-07-05T12:00:00Z] and timeStart<[2026-07-10T12:00:00Z]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectwise.Conditions(tt.from, tt.to, "19301"); got != tt.want {
				t.Errorf("Conditions = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimeEntriesFullPageWithNullKeepsPaging(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			fmt.Fprint(w, `[{"id": 1}, null]`)
		default:
			fmt.Fprint(w, `[{"id": 2}]`)
		}
	}))
	defer srv.Close()

	c, err := connectwise.NewClient(context.Background(), basicConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := c.TimeEntries(context.Background(), time.Now(), time.Now(), "1")
	if err != nil {
		t.Fatalf("TimeEntries: %v", err)
	}
	if len(entries) != 2 || entries[1].ID != 2 {
		t.Errorf("entries = %+v, want ids 1 and 2", entries)
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Errorf("pages = %v", pages)
	}
}

func TestTimeEntriesPaginatesWithBasicAuth(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("it360+pub:priv"))
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time/entries" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}
		if got := r.Header.Get("clientId"); got != "client-123" {
			t.Errorf("clientId = %q", got)
		}
		q := r.URL.Query()
		if !strings.HasPrefix(q.Get("conditions"), "company/id=19301 and ") {
			t.Errorf("conditions = %q", q.Get("conditions"))
		}
		if q.Get("orderBy") != "timeStart desc" || q.Get("pageSize") != "2" {
			t.Errorf("orderBy = %q pageSize = %q", q.Get("orderBy"), q.Get("pageSize"))
		}
		page := q.Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			fmt.Fprint(w, `[{"id": 1, "ticket": {"id": 10, "summary": "a"}}, {"id": 2}]`)
		case "2":
			fmt.Fprint(w, `[{"id": 3, "notes": "last"}]`)
		default:
			t.Errorf("unexpected page %s", page)
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	c, err := connectwise.NewClient(context.Background(), basicConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	from := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	entries, err := c.TimeEntries(context.Background(), from, from.AddDate(0, 0, 5), "19301")
	if err != nil {
		t.Fatalf("TimeEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Ticket == nil || entries[0].Ticket.ID != "10" {
		t.Errorf("first ticket = %+v", entries[0].Ticket)
	}
	if entries[2].Notes != "last" {
		t.Errorf("last notes = %q", entries[2].Notes)
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Errorf("pages = %v", pages)
	}
}

func TestTimeEntriesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"NotAuthenticated"}`)
	}))
	defer srv.Close()

	c, err := connectwise.NewClient(context.Background(), basicConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.TimeEntries(context.Background(), time.Now(), time.Now(), "1")
	var apiErr *connectwise.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || !strings.Contains(apiErr.Body, "NotAuthenticated") {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestTimeEntriesNoRetryByDefault(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := connectwise.NewClient(context.Background(), basicConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.TimeEntries(context.Background(), time.Now(), time.Now(), "1"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTimeEntriesOAuth2(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/time/entries", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("clientId"); got != "client-123" {
			t.Errorf("clientId = %q", got)
		}
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := basicConfig(srv.URL)
	cfg.Auth = config.AuthOAuth2
	cfg.TokenURL = srv.URL + "/token"
	cfg.ClientSecret = "secret"

	c, err := connectwise.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := c.TimeEntries(context.Background(), time.Now(), time.Now(), "1")
	if err != nil {
		t.Fatalf("TimeEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestNewClientUnknownAuth(t *testing.T) {
	cfg := basicConfig("http://example.invalid")
	cfg.Auth = "kerberos"
	if _, err := connectwise.NewClient(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestTimeEntriesHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c, err := connectwise.NewClient(context.Background(), basicConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.TimeEntries(ctx, time.Now(), time.Now(), "1"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
