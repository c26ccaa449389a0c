package erp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultTimeout = 15 * time.Second

// ScheduleSource is the read-only boundary to the ERP shift schedule.
type ScheduleSource interface {
	FetchSchedule(ctx context.Context, date, shiftCode string) ([]Row, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL        string
	SessionCookies string
	UserAgent      string
	Timeout        time.Duration
	HTTPClient     httpDoer
}

// HTTPClient talks to the legacy ERP's schedule endpoint over an
// already-established cookie session. The login handshake itself is
// not handled here; callers supply the session cookie header.
type HTTPClient struct {
	baseURL        string
	sessionCookies string
	userAgent      string
	httpClient     httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("erp base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid erp base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		retryClient := retryablehttp.NewClient()
		retryClient.Logger = log.New(io.Discard, "", 0)
		retryClient.RetryMax = 3
		retryClient.HTTPClient.Timeout = timeout
		doer = retryClient.StandardClient()
	}

	return &HTTPClient{
		baseURL:        baseURL,
		sessionCookies: strings.TrimSpace(cfg.SessionCookies),
		userAgent:      strings.TrimSpace(cfg.UserAgent),
		httpClient:     doer,
	}, nil
}

// FetchSchedule returns the raw schedule rows for one workday and
// shift. The response body is loosely typed; rows may arrive as a
// top-level array or wrapped in a "rows" or "data" field.
func (c *HTTPClient) FetchSchedule(ctx context.Context, date, shiftCode string) ([]Row, error) {
	endpoint := fmt.Sprintf(
		"%s/Services/ShiftSchedule?workday=%s&shift=%s",
		c.baseURL,
		url.QueryEscape(date),
		url.QueryEscape(shiftCode),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Op: "schedule request", Err: err}
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.sessionCookies != "" {
		req.Header.Set("Cookie", c.sessionCookies)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapFetchError("schedule fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{
			Op:  "schedule fetch",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapFetchError("schedule read", err)
	}
	return ParseScheduleRows(body), nil
}

// ParseScheduleRows extracts rows from a raw schedule response body.
func ParseScheduleRows(body []byte) []Row {
	parsed := gjson.ParseBytes(body)
	list := parsed
	if !parsed.IsArray() {
		for _, key := range []string{"rows", "data", "Schedule"} {
			if candidate := parsed.Get(key); candidate.IsArray() {
				list = candidate
				break
			}
		}
	}
	if !list.IsArray() {
		return nil
	}

	items := list.Array()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, rowFromJSON(item))
	}
	return rows
}
