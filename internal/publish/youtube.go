package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"reelforge/internal/services"
)

const (
	youtubeTitleLimit       = 100
	youtubeDescriptionLimit = 5000
)

// YouTubeConfig captures the settings for the bytes-upload publisher.
type YouTubeConfig struct {
	AccessToken   string
	UploadBaseURL string
	CategoryID    string
	PrivacyStatus string
}

// YouTube uploads the rendered video bytes through the multipart insert
// endpoint.
type YouTube struct {
	cfg        YouTubeConfig
	httpClient *http.Client
}

// YouTubeOption customizes the publisher.
type YouTubeOption func(*YouTube)

// WithYouTubeHTTPClient overrides the default HTTP client (used in tests).
func WithYouTubeHTTPClient(client *http.Client) YouTubeOption {
	return func(p *YouTube) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewYouTube constructs the YouTube publisher.
func NewYouTube(cfg YouTubeConfig, opts ...YouTubeOption) (*YouTube, error) {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.UploadBaseURL = strings.TrimRight(strings.TrimSpace(cfg.UploadBaseURL), "/")
	if cfg.AccessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "youtube", "access token required", nil)
	}
	if cfg.UploadBaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "youtube", "upload base url required", nil)
	}
	if cfg.PrivacyStatus == "" {
		cfg.PrivacyStatus = "public"
	}
	p := &YouTube{cfg: cfg, httpClient: &http.Client{Timeout: 10 * time.Minute}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *YouTube) Name() string { return "youtube" }

type youtubeSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
}

type youtubeStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type youtubeInsertBody struct {
	Snippet youtubeSnippet `json:"snippet"`
	Status  youtubeStatus  `json:"status"`
}

type youtubeInsertResponse struct {
	ID string `json:"id"`
}

// Publish implements Publisher. It streams the local file in a
// multipart/related body alongside the snippet metadata.
func (p *YouTube) Publish(ctx context.Context, asset Asset, meta Metadata) (string, error) {
	if strings.TrimSpace(asset.LocalPath) == "" {
		return "", services.Wrap(services.ErrValidation, "publish", "youtube", "local video path required", nil)
	}
	file, err := os.Open(asset.LocalPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "publish", "youtube", "open video file", err)
	}
	defer file.Close()

	metadata := youtubeInsertBody{
		Snippet: youtubeSnippet{
			Title:       truncate(meta.Title, youtubeTitleLimit),
			Description: truncate(meta.Description, youtubeDescriptionLimit),
			Tags:        meta.Tags,
			CategoryID:  p.cfg.CategoryID,
		},
		Status: youtubeStatus{PrivacyStatus: p.cfg.PrivacyStatus},
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "encode metadata", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "build metadata part", err)
	}
	if _, err := metaPart.Write(encoded); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "write metadata part", err)
	}

	videoHeader := textproto.MIMEHeader{}
	videoHeader.Set("Content-Type", "video/mp4")
	videoPart, err := writer.CreatePart(videoHeader)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "build video part", err)
	}
	if _, err := io.Copy(videoPart, file); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "read video file", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "finalize body", err)
	}

	endpoint := p.cfg.UploadBaseURL + "/videos?uploadType=multipart&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "http error", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", detail, nil)
	}

	var parsed youtubeInsertResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "decode response", err)
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", services.Wrap(services.ErrUpstream, "publish", "youtube", "no video id returned", nil)
	}
	return "https://www.youtube.com/watch?v=" + parsed.ID, nil
}
