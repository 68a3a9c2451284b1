// Package ads fetches campaign performance reports from the Amazon
// Advertising API. Reporting is asynchronous on the vendor side: a report
// request is created, polled to completion, then downloaded as gzipped
// JSON rows.
package ads

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/polling"
	"reelforge/internal/services"
)

const (
	defaultHTTPTimeout = 60 * time.Second

	clientIDHeader = "Amazon-Advertising-API-ClientId"
)

// reportTypeToAdProduct maps a report type id to the ad product the
// reporting API requires alongside it. The adProduct field is mandatory;
// requests without it are rejected.
var reportTypeToAdProduct = map[string]string{
	"spCampaigns": "SPONSORED_PRODUCTS",
	"spAdGroups":  "SPONSORED_PRODUCTS",
	"spKeywords":  "SPONSORED_PRODUCTS",
	"spTargets":   "SPONSORED_PRODUCTS",
	"sbCampaigns": "SPONSORED_BRANDS",
	"sbAdGroups":  "SPONSORED_BRANDS",
	"sbKeywords":  "SPONSORED_BRANDS",
	"sdCampaigns": "SPONSORED_DISPLAY",
	"sdAdGroups":  "SPONSORED_DISPLAY",
	"sdTargets":   "SPONSORED_DISPLAY",
}

// DefaultColumns are the metrics requested when the caller does not pick
// their own.
var DefaultColumns = []string{"campaignName", "impressions", "clicks", "cost"}

// Report statuses the vendor moves a request through.
const (
	reportStatusCompleted = "COMPLETED"
	reportStatusFailed    = "FAILED"
)

// Config captures the runtime settings for the advertising API.
type Config struct {
	AccessToken  string
	ClientID     string
	BaseURL      string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Client talks to the advertising reporting API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an advertising reporting client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ads", "new client", "access token required", nil)
	}
	if cfg.ClientID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ads", "new client", "client id required", nil)
	}
	if cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ads", "new client", "base url required", nil)
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: defaultHTTPTimeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ReportRequest describes one campaign report. Dates are YYYY-MM-DD.
type ReportRequest struct {
	StartDate  string
	EndDate    string
	ReportType string
	Columns    []string
}

type reportConfiguration struct {
	AdProduct    string   `json:"adProduct"`
	Columns      []string `json:"columns"`
	ReportTypeID string   `json:"reportTypeId"`
	TimeUnit     string   `json:"timeUnit"`
	Format       string   `json:"format"`
}

type createReportPayload struct {
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Configuration reportConfiguration `json:"configuration"`
}

type reportEnvelope struct {
	ReportID      string `json:"reportId"`
	Status        string `json:"status"`
	URL           string `json:"url"`
	FailureReason string `json:"failureReason"`
}

// CreateReport submits a report request and returns the vendor report id.
func (c *Client) CreateReport(ctx context.Context, req ReportRequest) (string, error) {
	payload, err := buildPayload(req)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "ads", "create report", "encode payload", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/reporting/reports", encoded)
	if err != nil {
		return "", err
	}
	var parsed reportEnvelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpstream, "ads", "create report", "decode response", err)
	}
	if strings.TrimSpace(parsed.ReportID) == "" {
		return "", services.Wrap(services.ErrUpstream, "ads", "create report", "no report id returned", nil)
	}
	return parsed.ReportID, nil
}

func buildPayload(req ReportRequest) (createReportPayload, error) {
	reportType := strings.TrimSpace(req.ReportType)
	adProduct, ok := reportTypeToAdProduct[reportType]
	if !ok {
		return createReportPayload{}, services.Wrap(services.ErrValidation, "ads", "create report",
			fmt.Sprintf("unsupported report type %q", req.ReportType), nil)
	}
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return createReportPayload{}, services.Wrap(services.ErrValidation, "ads", "create report", "start and end dates required", nil)
	}
	columns := req.Columns
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	return createReportPayload{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Configuration: reportConfiguration{
			AdProduct:    adProduct,
			Columns:      columns,
			ReportTypeID: reportType,
			TimeUnit:     "DAILY",
			Format:       "GZIP_JSON",
		},
	}, nil
}

func (c *Client) reportStatus(ctx context.Context, reportID string) (reportEnvelope, error) {
	var parsed reportEnvelope
	body, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/reporting/reports/"+reportID, nil)
	if err != nil {
		return parsed, err
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, services.Wrap(services.ErrUpstream, "ads", "report status", "decode response", err)
	}
	return parsed, nil
}

// FetchReport creates a report, waits for it to complete, and returns the
// decompressed JSON rows. Expiry of the wait surfaces as
// services.ErrTimeout; a failed report as services.ErrUpstream.
func (c *Client) FetchReport(ctx context.Context, req ReportRequest) ([]byte, error) {
	reportID, err := c.CreateReport(ctx, req)
	if err != nil {
		return nil, err
	}

	var downloadURL string
	err = polling.Wait(ctx, c.cfg.PollInterval, c.cfg.MaxWait, func(ctx context.Context) (bool, error) {
		status, err := c.reportStatus(ctx, reportID)
		if err != nil {
			return false, err
		}
		switch status.Status {
		case reportStatusCompleted:
			downloadURL = status.URL
			return true, nil
		case reportStatusFailed:
			detail := "report generation failed"
			if reason := strings.TrimSpace(status.FailureReason); reason != "" {
				detail = "report generation failed: " + reason
			}
			return false, services.Wrap(services.ErrUpstream, "ads", "fetch report", detail, nil)
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(downloadURL) == "" {
		return nil, services.Wrap(services.ErrUpstream, "ads", "fetch report", "completed report missing download url", nil)
	}
	return c.download(ctx, downloadURL)
}

func (c *Client) download(ctx context.Context, downloadURL string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		// Some endpoints hand back plain JSON despite the requested format.
		return body, nil
	}
	defer reader.Close()
	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "ads", "download report", "decompress report", err)
	}
	return decompressed, nil
}

// DateRange returns (start, end) covering the daysBack days before now,
// formatted as the YYYY-MM-DD dates the reporting API expects.
func DateRange(now time.Time, daysBack int) (string, string) {
	if daysBack < 0 {
		daysBack = 0
	}
	end := now
	start := end.AddDate(0, 0, -daysBack)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "ads", "request", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set(clientIDHeader, c.cfg.ClientID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "ads", "request", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "ads", "request", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, services.Wrap(services.ErrUpstream, "ads", "request", detail, nil)
	}
	return body, nil
}
