package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelforge/internal/api"
	"reelforge/internal/config"
	"reelforge/internal/jobs"
	"reelforge/internal/logging"
	"reelforge/internal/runner"
	"reelforge/internal/testsupport"
)

func newTestServer(t *testing.T, run api.RunFunc) (*api.Server, jobs.Registry) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	registry := jobs.NewMemoryRegistry()
	if run == nil {
		run = func(context.Context, *config.Config, int) (runner.Summary, error) {
			return runner.Summary{}, nil
		}
	}
	server, err := api.NewServer(cfg, registry, run, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, registry
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRootDescribesService(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["service"] != "reelforge" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRunRequiresProfileID(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{}`))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRunRejectsMalformedBody(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{not json`))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRunMissingConfigPathIs404(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	body := `{"profile_id":"p1","config_path":"/nope/missing.toml"}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRunAcceptsAndCompletesJob(t *testing.T) {
	done := make(chan struct{})
	var gotCount int
	run := func(_ context.Context, _ *config.Config, processCount int) (runner.Summary, error) {
		gotCount = processCount
		defer close(done)
		return runner.Summary{ProductsProcessed: 2}, nil
	}
	server, registry := newTestServer(t, run)

	rec := httptest.NewRecorder()
	body := `{"profile_id":"p1","config":{"products_per_run":2}}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID     string `json:"job_id"`
		Status    string `json:"status"`
		StatusURL string `json:"status_url"`
	}
	decodeBody(t, rec, &accepted)
	if accepted.JobID == "" || accepted.Status != "pending" {
		t.Fatalf("unexpected accept payload: %+v", accepted)
	}
	if accepted.StatusURL != "/status/"+accepted.JobID {
		t.Fatalf("unexpected status url %q", accepted.StatusURL)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run function never invoked")
	}
	if gotCount != 2 {
		t.Fatalf("expected inline override to set process count 2, got %d", gotCount)
	}

	// The goroutine records completion after the run returns.
	deadline := time.After(5 * time.Second)
	for {
		job, err := registry.Get(context.Background(), accepted.JobID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if job.Status == jobs.StatusCompleted {
			if job.Result == "" {
				t.Fatal("expected result payload")
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never completed, status %s", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunInlineOverridesReachRunConfig(t *testing.T) {
	done := make(chan struct{})
	var gotCfg config.Config
	run := func(_ context.Context, cfg *config.Config, _ int) (runner.Summary, error) {
		gotCfg = *cfg
		defer close(done)
		return runner.Summary{}, nil
	}
	server, _ := newTestServer(t, run)

	rec := httptest.NewRecorder()
	body := `{"profile_id":"p1","config":{"spreadsheet_id":"sheet-override","gcp_project_id":"proj-1","schedule_type":"hourly","run_on_start":true}}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run function never invoked")
	}
	if gotCfg.Sheets.SpreadsheetID != "sheet-override" {
		t.Fatalf("expected spreadsheet override, got %q", gotCfg.Sheets.SpreadsheetID)
	}
	if gotCfg.Secrets.GCPProjectID != "proj-1" {
		t.Fatalf("expected project override, got %q", gotCfg.Secrets.GCPProjectID)
	}
	if gotCfg.Schedule.Type != "hourly" || !gotCfg.Schedule.RunOnStart {
		t.Fatalf("expected schedule overrides, got %+v", gotCfg.Schedule)
	}
}

func TestRunFailureRecordedOnJob(t *testing.T) {
	run := func(context.Context, *config.Config, int) (runner.Summary, error) {
		return runner.Summary{}, context.DeadlineExceeded
	}
	server, registry := newTestServer(t, run)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"profile_id":"p1"}`))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decodeBody(t, rec, &accepted)

	deadline := time.After(5 * time.Second)
	for {
		job, err := registry.Get(context.Background(), accepted.JobID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if job.Status == jobs.StatusFailed {
			if job.Error == "" {
				t.Fatal("expected failure message")
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never failed, status %s", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStatusUnknownJobIs404(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/no-such-job", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
