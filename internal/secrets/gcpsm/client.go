// Package gcpsm reads secrets from the Google Secret Manager REST API.
package gcpsm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/services"
)

const defaultTimeout = 15 * time.Second

// Config captures the runtime settings for the secret manager client.
type Config struct {
	ProjectID   string
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client accesses secret versions under one GCP project.
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

// NewClient constructs a secret manager client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ProjectID = strings.TrimSpace(cfg.ProjectID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	if cfg.ProjectID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gcpsm", "new client", "project id required", nil)
	}
	if cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gcpsm", "new client", "access token required", nil)
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

type accessResponse struct {
	Payload struct {
		Data string `json:"data"`
	} `json:"payload"`
}

// GetSecret fetches the latest version of a named secret.
func (c *Client) GetSecret(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "gcpsm", "get", "secret name required", nil)
	}
	endpoint := fmt.Sprintf("%s/projects/%s/secrets/%s/versions/latest:access",
		c.cfg.BaseURL, c.cfg.ProjectID, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "gcpsm", "get", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "gcpsm", "get", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "gcpsm", "get", "read body", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", services.Wrap(services.ErrSecretNotFound, "gcpsm", "get", name, nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("%s: http %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
		return "", services.Wrap(services.ErrUpstream, "gcpsm", "get", detail, nil)
	}

	var parsed accessResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpstream, "gcpsm", "get", "decode response", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(parsed.Payload.Data)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "gcpsm", "get", "decode payload", err)
	}
	return strings.TrimSpace(string(decoded)), nil
}
