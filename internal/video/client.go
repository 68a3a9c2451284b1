package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/catalog"
	"reelforge/internal/polling"
	"reelforge/internal/services"
)

const defaultHTTPTimeout = 2 * time.Minute

// Config captures the runtime settings for the render vendor.
type Config struct {
	APIKey          string
	BaseURL         string
	AvatarID        string
	VoiceID         string
	BackgroundColor string
	Width           int
	Height          int
	PollInterval    time.Duration
	MaxWait         time.Duration
}

// Client implements Generator against the render vendor's REST API.
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

// NewClient constructs a render client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "video", "new client", "api key required", nil)
	}
	if cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "video", "new client", "base url required", nil)
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: defaultHTTPTimeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type generatePayload struct {
	VideoInputs []videoInput `json:"video_inputs"`
	Dimension   dimension    `json:"dimension"`
	AspectRatio string       `json:"aspect_ratio"`
}

type videoInput struct {
	Character character  `json:"character"`
	Voice     voice      `json:"voice"`
	Background background `json:"background"`
}

type character struct {
	Type        string `json:"type"`
	AvatarID    string `json:"avatar_id"`
	AvatarStyle string `json:"avatar_style"`
}

type voice struct {
	Type      string  `json:"type"`
	InputText string  `json:"input_text"`
	VoiceID   string  `json:"voice_id"`
	Speed     float64 `json:"speed"`
}

type background struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type statusEnvelope struct {
	Data struct {
		VideoID  string `json:"video_id"`
		Status   string `json:"status"`
		VideoURL string `json:"video_url"`
		Error    *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"data"`
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, script string, _ catalog.ProductRecord) (Result, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return Result{}, services.Wrap(services.ErrValidation, "video", "generate", "script required", nil)
	}

	videoID, err := c.createRender(ctx, script)
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = polling.Wait(ctx, c.cfg.PollInterval, c.cfg.MaxWait, func(ctx context.Context) (bool, error) {
		status, err := c.renderStatus(ctx, videoID)
		if err != nil {
			return false, err
		}
		switch Status(status.Data.Status) {
		case StatusCompleted:
			result = Result{VideoID: videoID, VideoURL: status.Data.VideoURL, Status: StatusCompleted}
			return true, nil
		case StatusFailed:
			detail := "render failed"
			if status.Data.Error != nil && strings.TrimSpace(status.Data.Error.Message) != "" {
				detail = "render failed: " + strings.TrimSpace(status.Data.Error.Message)
			}
			return false, services.Wrap(services.ErrUpstream, "video", "generate", detail, nil)
		default:
			return false, nil
		}
	})
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(result.VideoURL) == "" {
		return Result{}, services.Wrap(services.ErrUpstream, "video", "generate", "completed render missing video url", nil)
	}
	return result, nil
}

func (c *Client) createRender(ctx context.Context, script string) (string, error) {
	payload := generatePayload{
		VideoInputs: []videoInput{{
			Character: character{Type: "avatar", AvatarID: c.cfg.AvatarID, AvatarStyle: "normal"},
			Voice:     voice{Type: "text", InputText: script, VoiceID: c.cfg.VoiceID, Speed: 1.0},
			Background: background{
				Type:  "color",
				Value: c.cfg.BackgroundColor,
			},
		}},
		Dimension:   dimension{Width: c.cfg.Width, Height: c.cfg.Height},
		AspectRatio: "16:9",
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "video", "create", "encode payload", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/video/generate", encoded)
	if err != nil {
		return "", err
	}
	var parsed statusEnvelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpstream, "video", "create", "decode response", err)
	}
	if strings.TrimSpace(parsed.Data.VideoID) == "" {
		return "", services.Wrap(services.ErrUpstream, "video", "create", "no video id returned", nil)
	}
	return parsed.Data.VideoID, nil
}

func (c *Client) renderStatus(ctx context.Context, videoID string) (statusEnvelope, error) {
	var parsed statusEnvelope
	body, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/video/"+videoID, nil)
	if err != nil {
		return parsed, err
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, services.Wrap(services.ErrUpstream, "video", "status", "decode response", err)
	}
	return parsed, nil
}

// Download implements Generator.
func (c *Client) Download(ctx context.Context, videoURL, outputPath string) error {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return services.Wrap(services.ErrValidation, "video", "download", "video url required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("ensure video directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "video", "download", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "video", "download", "http error", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrUpstream, "video", "download",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create video file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(outputPath)
		return fmt.Errorf("write video file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("close video file: %w", err)
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
		return nil, services.Wrap(services.ErrUpstream, "video", "request", "build request", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "video", "request", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "video", "request", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, services.Wrap(services.ErrUpstream, "video", "request", detail, nil)
	}
	return body, nil
}
