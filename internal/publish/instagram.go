package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelforge/internal/polling"
	"reelforge/internal/services"
)

const instagramCaptionLimit = 2200

// InstagramConfig captures the settings for the Reels publisher.
type InstagramConfig struct {
	AccessToken        string
	AccountID          string
	BaseURL            string
	ProcessingInterval time.Duration
	ProcessingMaxWait  time.Duration
}

// Instagram publishes Reels through the two-step container flow: create a
// media container from the public video URL, wait for processing, then
// publish the container.
type Instagram struct {
	cfg        InstagramConfig
	httpClient *http.Client
}

// InstagramOption customizes the publisher.
type InstagramOption func(*Instagram)

// WithInstagramHTTPClient overrides the default HTTP client (used in tests).
func WithInstagramHTTPClient(client *http.Client) InstagramOption {
	return func(p *Instagram) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewInstagram constructs the Instagram publisher.
func NewInstagram(cfg InstagramConfig, opts ...InstagramOption) (*Instagram, error) {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.AccountID = strings.TrimSpace(cfg.AccountID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "instagram", "access token required", nil)
	}
	if cfg.AccountID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "instagram", "account id required", nil)
	}
	if cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "instagram", "base url required", nil)
	}
	p := &Instagram{cfg: cfg, httpClient: &http.Client{Timeout: 2 * time.Minute}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *Instagram) Name() string { return "instagram" }

type instagramIDResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type instagramStatusResponse struct {
	StatusCode string `json:"status_code"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Publish implements Publisher.
func (p *Instagram) Publish(ctx context.Context, asset Asset, meta Metadata) (string, error) {
	if strings.TrimSpace(asset.RemoteURL) == "" {
		return "", services.Wrap(services.ErrValidation, "publish", "instagram", "remote video url required", nil)
	}

	containerID, err := p.createContainer(ctx, asset.RemoteURL, buildCaption(meta))
	if err != nil {
		return "", err
	}
	if err := p.waitForProcessing(ctx, containerID); err != nil {
		return "", err
	}
	return p.publishContainer(ctx, containerID)
}

// buildCaption joins title and description and appends hashtag-formatted tags.
func buildCaption(meta Metadata) string {
	var parts []string
	if title := strings.TrimSpace(meta.Title); title != "" {
		parts = append(parts, title)
	}
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		parts = append(parts, desc)
	}
	var hashtags []string
	for _, tag := range meta.Tags {
		tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "")
		if tag != "" {
			hashtags = append(hashtags, "#"+tag)
		}
	}
	if len(hashtags) > 0 {
		parts = append(parts, strings.Join(hashtags, " "))
	}
	return truncate(strings.Join(parts, "\n\n"), instagramCaptionLimit)
}

func (p *Instagram) createContainer(ctx context.Context, videoURL, caption string) (string, error) {
	params := url.Values{}
	params.Set("media_type", "REELS")
	params.Set("video_url", videoURL)
	params.Set("caption", caption)
	params.Set("access_token", p.cfg.AccessToken)

	var parsed instagramIDResponse
	endpoint := fmt.Sprintf("%s/%s/media", p.cfg.BaseURL, p.cfg.AccountID)
	if err := p.postForm(ctx, "create container", endpoint, params, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "instagram",
			"create container: "+strings.TrimSpace(parsed.Error.Message), nil)
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", services.Wrap(services.ErrUpstream, "publish", "instagram", "no container id returned", nil)
	}
	return parsed.ID, nil
}

func (p *Instagram) waitForProcessing(ctx context.Context, containerID string) error {
	return polling.Wait(ctx, p.cfg.ProcessingInterval, p.cfg.ProcessingMaxWait, func(ctx context.Context) (bool, error) {
		endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
			p.cfg.BaseURL, containerID, url.QueryEscape(p.cfg.AccessToken))
		var parsed instagramStatusResponse
		if err := p.getJSON(ctx, "container status", endpoint, &parsed); err != nil {
			return false, err
		}
		if parsed.Error != nil {
			return false, services.Wrap(services.ErrUpstream, "publish", "instagram",
				"container status: "+strings.TrimSpace(parsed.Error.Message), nil)
		}
		switch parsed.StatusCode {
		case "FINISHED":
			return true, nil
		case "ERROR":
			return false, services.Wrap(services.ErrUpstream, "publish", "instagram", "container processing failed", nil)
		default:
			return false, nil
		}
	})
}

func (p *Instagram) publishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", p.cfg.AccessToken)

	var parsed instagramIDResponse
	endpoint := fmt.Sprintf("%s/%s/media_publish", p.cfg.BaseURL, p.cfg.AccountID)
	if err := p.postForm(ctx, "publish container", endpoint, params, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "instagram",
			"publish container: "+strings.TrimSpace(parsed.Error.Message), nil)
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", services.Wrap(services.ErrUpstream, "publish", "instagram", "no media id returned", nil)
	}
	return parsed.ID, nil
}

func (p *Instagram) postForm(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "instagram", op+": build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.send(req, op, out)
}

func (p *Instagram) getJSON(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "instagram", op+": build request", err)
	}
	return p.send(req, op, out)
}

func (p *Instagram) send(req *http.Request, op string, out any) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "instagram", op+": http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "instagram", op+": read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("%s: http %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
		return services.Wrap(services.ErrUpstream, "publish", "instagram", detail, nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "instagram", op+": decode response", err)
	}
	return nil
}
