package lighthouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client defines the Lighthouse device-event operations the sync flow
// depends on. Event groups are time segments on a device; event items
// are the planned entries inside a group.
type Client interface {
	ListDevices(ctx context.Context, clusterID string) ([]Device, error)
	ListPlanningItems(ctx context.Context, clusterID string, from, to time.Time) ([]PlanningItem, error)
	ApplyBatch(ctx context.Context, body BatchRequest) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	AppID      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	appID      string
	apiKey     string
	httpClient httpDoer
}

// NewClient builds a Lighthouse API client. The batch endpoint is not
// idempotent, so the underlying transport never retries; a bounded
// per-request timeout is the only resilience applied here.
func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("lighthouse base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid lighthouse base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		appID:      strings.TrimSpace(cfg.AppID),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: doer,
	}, nil
}

// ListDevices returns the device directory of a cluster. Work centers
// are correlated to devices by the device's foreign identifier.
func (c *HTTPClient) ListDevices(ctx context.Context, clusterID string) ([]Device, error) {
	path := fmt.Sprintf("/api/v1/clusters/%s/devices", url.PathEscape(clusterID))
	var out []Device
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPlanningItems returns every planning-annotation event item on
// the cluster whose segment overlaps [from, to]. This feeds the local
// assignment snapshot.
func (c *HTTPClient) ListPlanningItems(ctx context.Context, clusterID string, from, to time.Time) ([]PlanningItem, error) {
	path := fmt.Sprintf(
		"/api/v1/clusters/%s/event-items?annotationType=PLANNING&from=%s&to=%s",
		url.PathEscape(clusterID),
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)),
	)
	var out struct {
		Items []PlanningItem `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ApplyBatch submits one combined create/update/delete body. The whole
// batch is treated as all-or-nothing: any failure leaves the selected
// change set unapplied and the caller retries at its own discretion.
func (c *HTTPClient) ApplyBatch(ctx context.Context, body BatchRequest) error {
	if body.Empty() {
		return errors.New("batch request must not be empty")
	}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/event-groups/batch", body, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.appID != "" {
		req.Header.Set("X-App-Id", c.appID)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &MutationError{Op: fmt.Sprintf("%s %s", method, endpointPath), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &MutationError{
			Op:  fmt.Sprintf("%s %s", method, endpointPath),
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}

// MutationError is a failed Lighthouse call. Batches are never
// partially rolled back; the caller re-runs the analysis after any
// failure.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("lighthouse %s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
