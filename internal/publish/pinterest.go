package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/services"
)

const (
	pinterestTitleLimit       = 100
	pinterestDescriptionLimit = 500
)

// PinterestConfig captures the settings for the pin-by-URL publisher.
type PinterestConfig struct {
	AccessToken string
	BoardID     string
	BaseURL     string
}

// Pinterest creates a video pin referencing the hosted render URL.
type Pinterest struct {
	cfg        PinterestConfig
	httpClient *http.Client
}

// PinterestOption customizes the publisher.
type PinterestOption func(*Pinterest)

// WithPinterestHTTPClient overrides the default HTTP client (used in tests).
func WithPinterestHTTPClient(client *http.Client) PinterestOption {
	return func(p *Pinterest) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewPinterest constructs the Pinterest publisher.
func NewPinterest(cfg PinterestConfig, opts ...PinterestOption) (*Pinterest, error) {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.BoardID = strings.TrimSpace(cfg.BoardID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "pinterest", "access token required", nil)
	}
	if cfg.BoardID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "pinterest", "board id required", nil)
	}
	if cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "pinterest", "base url required", nil)
	}
	p := &Pinterest{cfg: cfg, httpClient: &http.Client{Timeout: 2 * time.Minute}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *Pinterest) Name() string { return "pinterest" }

type pinterestMediaSource struct {
	SourceType string `json:"source_type"`
	URL        string `json:"url"`
}

type pinterestPinRequest struct {
	BoardID     string               `json:"board_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	MediaSource pinterestMediaSource `json:"media_source"`
}

type pinterestPinResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Publish implements Publisher.
func (p *Pinterest) Publish(ctx context.Context, asset Asset, meta Metadata) (string, error) {
	if strings.TrimSpace(asset.RemoteURL) == "" {
		return "", services.Wrap(services.ErrValidation, "publish", "pinterest", "remote video url required", nil)
	}

	payload := pinterestPinRequest{
		BoardID:     p.cfg.BoardID,
		Title:       truncate(meta.Title, pinterestTitleLimit),
		Description: truncate(meta.Description, pinterestDescriptionLimit),
		MediaSource: pinterestMediaSource{SourceType: "video_url", URL: asset.RemoteURL},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", "encode pin", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/pins", bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", detail, nil)
	}

	var parsed pinterestPinResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", "decode response", err)
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", services.Wrap(services.ErrUpstream, "publish", "pinterest", "no pin id returned", nil)
	}
	return "https://www.pinterest.com/pin/" + parsed.ID, nil
}
