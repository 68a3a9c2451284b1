package ads_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reelforge/internal/ads"
	"reelforge/internal/services"
)

func newClient(t *testing.T, serverURL string, maxWait time.Duration) *ads.Client {
	t.Helper()
	client, err := ads.NewClient(ads.Config{
		AccessToken:  "token",
		ClientID:     "client-1",
		BaseURL:      serverURL,
		PollInterval: time.Millisecond,
		MaxWait:      maxWait,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func request(reportType string) ads.ReportRequest {
	return ads.ReportRequest{
		StartDate:  "2026-08-01",
		EndDate:    "2026-08-08",
		ReportType: reportType,
	}
}

func TestCreateReportPayloadCarriesAdProduct(t *testing.T) {
	cases := map[string]string{
		"spCampaigns": "SPONSORED_PRODUCTS",
		"sbCampaigns": "SPONSORED_BRANDS",
		"sdCampaigns": "SPONSORED_DISPLAY",
	}
	for reportType, wantAdProduct := range cases {
		t.Run(reportType, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer token" {
					t.Fatalf("unexpected auth header %q", got)
				}
				if got := r.Header.Get("Amazon-Advertising-API-ClientId"); got != "client-1" {
					t.Fatalf("unexpected client id header %q", got)
				}
				if r.URL.Path != "/reporting/reports" {
					t.Fatalf("unexpected path %s", r.URL.Path)
				}
				var payload struct {
					StartDate     string `json:"startDate"`
					EndDate       string `json:"endDate"`
					Configuration struct {
						AdProduct    string   `json:"adProduct"`
						Columns      []string `json:"columns"`
						ReportTypeID string   `json:"reportTypeId"`
						TimeUnit     string   `json:"timeUnit"`
						Format       string   `json:"format"`
					} `json:"configuration"`
				}
				if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if payload.StartDate != "2026-08-01" || payload.EndDate != "2026-08-08" {
					t.Fatalf("unexpected dates %s to %s", payload.StartDate, payload.EndDate)
				}
				if payload.Configuration.AdProduct != wantAdProduct {
					t.Fatalf("expected ad product %s, got %s", wantAdProduct, payload.Configuration.AdProduct)
				}
				if payload.Configuration.ReportTypeID != reportType {
					t.Fatalf("unexpected report type id %s", payload.Configuration.ReportTypeID)
				}
				if payload.Configuration.TimeUnit != "DAILY" || payload.Configuration.Format != "GZIP_JSON" {
					t.Fatalf("unexpected configuration %+v", payload.Configuration)
				}
				if len(payload.Configuration.Columns) == 0 {
					t.Fatal("expected default columns")
				}
				json.NewEncoder(w).Encode(map[string]string{"reportId": "rep-1"})
			}))
			defer server.Close()

			id, err := newClient(t, server.URL, time.Second).CreateReport(context.Background(), request(reportType))
			if err != nil {
				t.Fatalf("CreateReport failed: %v", err)
			}
			if id != "rep-1" {
				t.Fatalf("unexpected report id %q", id)
			}
		})
	}
}

func TestCreateReportRejectsUnknownType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, time.Second).CreateReport(context.Background(), request("weeklyDigest"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchReportPollsAndDecompresses(t *testing.T) {
	rows := `[{"campaignName":"Widget Launch","impressions":100,"clicks":7,"cost":3.5}]`
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	gz.Write([]byte(rows))
	gz.Close()

	var statusCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/reporting/reports":
			json.NewEncoder(w).Encode(map[string]string{"reportId": "rep-1", "status": "PENDING"})
		case r.Method == http.MethodGet && r.URL.Path == "/reporting/reports/rep-1":
			if statusCalls.Add(1) < 3 {
				json.NewEncoder(w).Encode(map[string]string{"reportId": "rep-1", "status": "PROCESSING"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"reportId": "rep-1",
				"status":   "COMPLETED",
				"url":      "http://" + r.Host + "/download/rep-1",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/download/rep-1":
			w.Write(compressed.Bytes())
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	report, err := newClient(t, server.URL, time.Second).FetchReport(context.Background(), request("spCampaigns"))
	if err != nil {
		t.Fatalf("FetchReport failed: %v", err)
	}
	if string(report) != rows {
		t.Fatalf("unexpected report contents %q", report)
	}
	if got := statusCalls.Load(); got != 3 {
		t.Fatalf("expected 3 status polls, got %d", got)
	}
}

func TestFetchReportFailureIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"reportId": "rep-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"reportId":      "rep-1",
			"status":        "FAILED",
			"failureReason": "invalid columns",
		})
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, time.Second).FetchReport(context.Background(), request("spCampaigns"))
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream classification, got %v", err)
	}
}

func TestFetchReportExpiryIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"reportId": "rep-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"reportId": "rep-1", "status": "PROCESSING"})
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, 20*time.Millisecond).FetchReport(context.Background(), request("spCampaigns"))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestDateRange(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	start, end := ads.DateRange(now, 7)
	if start != "2026-08-22" || end != "2026-08-29" {
		t.Fatalf("unexpected range %s to %s", start, end)
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		t.Fatalf("start date not parseable: %v", err)
	}
}
