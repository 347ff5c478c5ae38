// Package connectwise fetches time entries from the ConnectWise Manage REST
// API.
package connectwise

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/logging"
	"github.com/Tiliavir/cwr/internal/model"
)

// APIError is returned for any non-200 response. Body holds the response
// text so callers can log what the server said.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("connectwise API error %d: %s", e.StatusCode, e.Body)
}

// Client is an authenticated ConnectWise Manage API client.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
}

// NewClient builds a client from cfg. Retries are off unless RetryMax is set.
func NewClient(ctx context.Context, cfg config.ConnectWiseConfig) (*Client, error) {
	transport, err := authTransport(ctx, cfg, http.DefaultTransport)
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	rc.RetryMax = cfg.RetryMax
	rc.Logger = logging.Leveled{Logger: logging.Log}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		pageSize:   pageSize,
		httpClient: rc,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// Conditions builds the time/entries filter for one company and the instants
// [from, to), written in UTC.
func Conditions(from, to time.Time, accountID string) string {
	return fmt.Sprintf("company/id=%s and timeStart>=[%s] and timeStart<[%s]",
		accountID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

// TimeEntries fetches every time entry of the account that starts in
// [from, to), newest first, following pages until a short page.
func (c *Client) TimeEntries(ctx context.Context, from, to time.Time, accountID string) ([]model.RawEntry, error) {
	query := url.Values{}
	query.Set("conditions", Conditions(from, to, accountID))
	query.Set("orderBy", "timeStart desc")
	query.Set("pageSize", strconv.Itoa(c.pageSize))

	var all []model.RawEntry
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))
		body, err := c.get(ctx, "/time/entries", query)
		if err != nil {
			return nil, err
		}
		entries, n, err := DecodeEntries(body)
		if err != nil {
			return nil, err
		}
		logging.Log.Debugf("page %d: %d time entries", page, len(entries))
		all = append(all, entries...)
		// a page counts every element, including ones that are not entries
		if n < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connectwise request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
