package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/polling"
	"reelforge/internal/services"
)

const twitterTextLimit = 280

// TwitterConfig captures the settings for the media-upload publisher.
type TwitterConfig struct {
	AccessToken        string
	UploadBaseURL      string
	APIBaseURL         string
	ProcessingInterval time.Duration
	ProcessingMaxWait  time.Duration
}

// Twitter uploads the video bytes to the media endpoint, waits for async
// processing, then posts a tweet attaching the media.
type Twitter struct {
	cfg        TwitterConfig
	httpClient *http.Client
}

// TwitterOption customizes the publisher.
type TwitterOption func(*Twitter)

// WithTwitterHTTPClient overrides the default HTTP client (used in tests).
func WithTwitterHTTPClient(client *http.Client) TwitterOption {
	return func(p *Twitter) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewTwitter constructs the Twitter publisher.
func NewTwitter(cfg TwitterConfig, opts ...TwitterOption) (*Twitter, error) {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.UploadBaseURL = strings.TrimRight(strings.TrimSpace(cfg.UploadBaseURL), "/")
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "twitter", "access token required", nil)
	}
	if cfg.UploadBaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "twitter", "upload base url required", nil)
	}
	if cfg.APIBaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "twitter", "api base url required", nil)
	}
	p := &Twitter{cfg: cfg, httpClient: &http.Client{Timeout: 5 * time.Minute}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *Twitter) Name() string { return "twitter" }

type twitterProcessingInfo struct {
	State string `json:"state"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type twitterUploadResponse struct {
	MediaIDString  string                 `json:"media_id_string"`
	ProcessingInfo *twitterProcessingInfo `json:"processing_info"`
}

type twitterTweetRequest struct {
	Text  string `json:"text"`
	Media struct {
		MediaIDs []string `json:"media_ids"`
	} `json:"media"`
}

type twitterTweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Publish implements Publisher.
func (p *Twitter) Publish(ctx context.Context, asset Asset, meta Metadata) (string, error) {
	if strings.TrimSpace(asset.LocalPath) == "" {
		return "", services.Wrap(services.ErrValidation, "publish", "twitter", "local video path required", nil)
	}

	mediaID, err := p.uploadMedia(ctx, asset.LocalPath)
	if err != nil {
		return "", err
	}
	if err := p.waitForProcessing(ctx, mediaID); err != nil {
		return "", err
	}
	return p.postTweet(ctx, mediaID, buildTweetText(meta))
}

// buildTweetText composes the tweet from the title and hashtags.
func buildTweetText(meta Metadata) string {
	text := strings.TrimSpace(meta.Title)
	var hashtags []string
	for _, tag := range meta.Tags {
		tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "")
		if tag != "" {
			hashtags = append(hashtags, "#"+tag)
		}
	}
	if len(hashtags) > 0 {
		if text != "" {
			text += "\n\n"
		}
		text += strings.Join(hashtags, " ")
	}
	return truncate(text, twitterTextLimit)
}

func (p *Twitter) uploadMedia(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "publish", "twitter", "open video file", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("media_category", "tweet_video"); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "build upload body", err)
	}
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "build upload body", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "read video file", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "finalize upload body", err)
	}

	endpoint := p.cfg.UploadBaseURL + "/media/upload.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "build upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var parsed twitterUploadResponse
	if err := p.send(req, "upload media", &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.MediaIDString) == "" {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "no media id returned", nil)
	}
	return parsed.MediaIDString, nil
}

func (p *Twitter) waitForProcessing(ctx context.Context, mediaID string) error {
	return polling.Wait(ctx, p.cfg.ProcessingInterval, p.cfg.ProcessingMaxWait, func(ctx context.Context) (bool, error) {
		endpoint := fmt.Sprintf("%s/media/upload.json?command=STATUS&media_id=%s",
			p.cfg.UploadBaseURL, url.QueryEscape(mediaID))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return false, services.Wrap(services.ErrUpstream, "publish", "twitter", "build status request", err)
		}
		req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)

		var parsed twitterUploadResponse
		if err := p.send(req, "media status", &parsed); err != nil {
			return false, err
		}
		// Small uploads skip async processing entirely.
		if parsed.ProcessingInfo == nil {
			return true, nil
		}
		switch parsed.ProcessingInfo.State {
		case "succeeded":
			return true, nil
		case "failed":
			detail := "media processing failed"
			if parsed.ProcessingInfo.Error != nil && strings.TrimSpace(parsed.ProcessingInfo.Error.Message) != "" {
				detail = "media processing failed: " + strings.TrimSpace(parsed.ProcessingInfo.Error.Message)
			}
			return false, services.Wrap(services.ErrUpstream, "publish", "twitter", detail, nil)
		default:
			return false, nil
		}
	})
}

func (p *Twitter) postTweet(ctx context.Context, mediaID, text string) (string, error) {
	payload := twitterTweetRequest{Text: text}
	payload.Media.MediaIDs = []string{mediaID}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "encode tweet", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBaseURL+"/tweets", bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "build tweet request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	var parsed twitterTweetResponse
	if err := p.send(req, "post tweet", &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Data.ID) == "" {
		return "", services.Wrap(services.ErrUpstream, "publish", "twitter", "no tweet id returned", nil)
	}
	return "https://twitter.com/i/status/" + parsed.Data.ID, nil
}

func (p *Twitter) send(req *http.Request, op string, out any) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "twitter", op+": http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "twitter", op+": read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("%s: http %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
		return services.Wrap(services.ErrUpstream, "publish", "twitter", detail, nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrUpstream, "publish", "twitter", op+": decode response", err)
	}
	return nil
}
