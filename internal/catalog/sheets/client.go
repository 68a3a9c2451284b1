package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelforge/internal/catalog"
	"reelforge/internal/services"
)

const (
	defaultTimeout = 30 * time.Second
	// readRange covers the header row plus every product row we expect a
	// single sheet to hold.
	readRange = "A1:ZZ10000"
)

// Config captures the runtime settings for the spreadsheet client.
type Config struct {
	SpreadsheetID string
	BaseURL       string
	APIToken      string
	Timeout       time.Duration
}

// Client reads product rows from the Google Sheets values API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	headerCount int
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

// NewClient constructs a spreadsheet client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.SpreadsheetID = strings.TrimSpace(cfg.SpreadsheetID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	if cfg.SpreadsheetID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "sheets", "new client", "spreadsheet id required", nil)
	}
	if cfg.APIToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "sheets", "new client", "api token required", nil)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type valueRange struct {
	Values [][]any `json:"values"`
}

// ListProducts fetches all rows and maps them onto the header row.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.ProductRecord, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SpreadsheetID), url.PathEscape(readRange))

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed valueRange
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "sheets", "list products", "decode response", err)
	}
	if len(parsed.Values) == 0 {
		return nil, nil
	}

	headers := make([]string, 0, len(parsed.Values[0]))
	for _, cell := range parsed.Values[0] {
		headers = append(headers, strings.TrimSpace(cellString(cell)))
	}
	c.headerCount = len(headers)

	records := make([]catalog.ProductRecord, 0, len(parsed.Values)-1)
	for _, row := range parsed.Values[1:] {
		record := make(catalog.ProductRecord, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = cellString(row[i])
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// MarkProcessed writes a completion timestamp into the column after the
// last header for the given zero-based product row.
func (c *Client) MarkProcessed(ctx context.Context, rowIndex int, processedAt time.Time) error {
	if rowIndex < 0 {
		return services.Wrap(services.ErrValidation, "sheets", "mark processed", "row index must be non-negative", nil)
	}
	column := columnLetter(c.headerCount)
	// Row 1 holds headers, so product row N lives in sheet row N+2.
	cell := fmt.Sprintf("%s%d", column, rowIndex+2)
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SpreadsheetID), url.PathEscape(cell))

	payload, err := json.Marshal(map[string]any{
		"values": [][]string{{processedAt.UTC().Format(time.RFC3339)}},
	})
	if err != nil {
		return services.Wrap(services.ErrUpstream, "sheets", "mark processed", "encode payload", err)
	}
	if _, err := c.do(ctx, http.MethodPut, endpoint, payload); err != nil {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "sheets", "request", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "sheets", "request", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "sheets", "request", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, services.Wrap(services.ErrUpstream, "sheets", "request", detail, nil)
	}
	return body, nil
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// columnLetter converts a zero-based column index into A1 notation
// (0 is A, 25 is Z, 26 is AA).
func columnLetter(index int) string {
	if index < 0 {
		index = 0
	}
	letters := ""
	for {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return letters
}
