package lighthouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

type fakeDoer struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (d fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return d.fn(req)
}

func jsonResponse(payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func TestListDevices(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/v1/clusters/cl-9/devices" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-App-Id"); got != "plansync-app" {
			t.Fatalf("unexpected app id header %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Fatalf("unexpected auth header %q", got)
		}
		return jsonResponse([]Device{{ID: "dev-1", DeviceName: "Lathe 1", ForeignID: "WC-01"}}), nil
	}}

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://lht.example.com",
		AppID:      "plansync-app",
		APIKey:     "key-1",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	devices, err := client.ListDevices(context.Background(), "cl-9")
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 1 || devices[0].ForeignID != "WC-01" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
}

func TestListPlanningItems_FiltersByAnnotationType(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		if got := r.URL.Query().Get("annotationType"); got != "PLANNING" {
			t.Fatalf("unexpected annotationType %q", got)
		}
		if r.URL.Query().Get("from") == "" || r.URL.Query().Get("to") == "" {
			t.Fatalf("missing range parameters: %s", r.URL.RawQuery)
		}
		return jsonResponse(map[string]any{
			"items": []PlanningItem{{GroupID: "g1", ItemID: "i1", DeviceID: "dev-1"}},
		}), nil
	}}

	client, err := NewClient(ClientConfig{BaseURL: "https://lht.example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	from := time.Date(2026, 1, 16, 18, 30, 0, 0, time.UTC)
	items, err := client.ListPlanningItems(context.Background(), "cl-9", from, from.Add(20*time.Hour))
	if err != nil {
		t.Fatalf("list planning items: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "i1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestApplyBatch_SubmitsSingleCombinedCall(t *testing.T) {
	t.Parallel()

	calls := 0
	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		calls++
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/event-groups/batch" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body.Create) != 1 || len(body.Update) != 1 {
			t.Fatalf("unexpected body: %+v", body)
		}
		return jsonResponse(map[string]string{"status": "ok"}), nil
	}}

	client, err := NewClient(ClientConfig{BaseURL: "https://lht.example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.ApplyBatch(context.Background(), BatchRequest{
		Create: []GroupCreate{{DeviceID: "dev-1", Title: "PLANNED_OUTPUT-2026-01-17"}},
		Update: []GroupUpdate{{GroupID: "g1", DeviceID: "dev-2", Items: GroupItemOps{Delete: []string{"i9"}}}},
	})
	if err != nil {
		t.Fatalf("apply batch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one remote call, got %d", calls)
	}
}

func TestApplyBatch_EmptyBodyRejected(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://lht.example.com",
		HTTPClient: fakeDoer{fn: func(r *http.Request) (*http.Response, error) { t.Fatal("no call expected"); return nil, nil }},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.ApplyBatch(context.Background(), BatchRequest{}); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestApplyBatch_FailureIsMutationError(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(bytes.NewReader([]byte("upstream down"))),
		}, nil
	}}
	client, err := NewClient(ClientConfig{BaseURL: "https://lht.example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.ApplyBatch(context.Background(), BatchRequest{
		Update: []GroupUpdate{{GroupID: "g1", DeviceID: "dev-1"}},
	})
	var mutationErr *MutationError
	if !errors.As(err, &mutationErr) {
		t.Fatalf("expected *MutationError, got %v", err)
	}
}
