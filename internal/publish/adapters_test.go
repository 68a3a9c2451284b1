package publish_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelforge/internal/publish"
)

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func meta() publish.Metadata {
	return publish.Metadata{
		Title:       "Widget - Spin faster",
		Description: "The widget spins.",
		Tags:        []string{"gadgets"},
	}
}

func TestYouTubeUploadsMultipartBytes(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer yt-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]string{"id": "abc123"})
	}))
	defer server.Close()

	pub, err := publish.NewYouTube(publish.YouTubeConfig{
		AccessToken:   "yt-token",
		UploadBaseURL: server.URL,
		CategoryID:    "22",
		PrivacyStatus: "public",
	})
	if err != nil {
		t.Fatalf("NewYouTube failed: %v", err)
	}

	ref, err := pub.Publish(context.Background(), publish.Asset{LocalPath: writeVideo(t)}, meta())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ref != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if !strings.HasPrefix(gotContentType, "multipart/related") {
		t.Fatalf("expected multipart/related content type, got %q", gotContentType)
	}
	body := string(gotBody)
	if !strings.Contains(body, "Widget - Spin faster") || !strings.Contains(body, "fake video bytes") {
		t.Fatal("expected metadata and video bytes in multipart body")
	}
}

func TestYouTubeTruncatesTitle(t *testing.T) {
	var gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if idx := strings.Index(string(body), `"title":"`); idx >= 0 {
			rest := string(body)[idx+len(`"title":"`):]
			gotTitle = rest[:strings.Index(rest, `"`)]
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "abc123"})
	}))
	defer server.Close()

	pub, _ := publish.NewYouTube(publish.YouTubeConfig{AccessToken: "t", UploadBaseURL: server.URL})
	longTitle := strings.Repeat("t", 150)
	if _, err := pub.Publish(context.Background(), publish.Asset{LocalPath: writeVideo(t)}, publish.Metadata{Title: longTitle}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(gotTitle) != 100 {
		t.Fatalf("expected title truncated to 100, got %d", len(gotTitle))
	}
}

func TestYouTubeRequiresLocalPath(t *testing.T) {
	pub, _ := publish.NewYouTube(publish.YouTubeConfig{AccessToken: "t", UploadBaseURL: "https://example.test"})
	if _, err := pub.Publish(context.Background(), publish.Asset{RemoteURL: "https://cdn/v.mp4"}, meta()); err == nil {
		t.Fatal("expected error without local path")
	}
}

func TestInstagramContainerFlow(t *testing.T) {
	var statusCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/acct-1/media"):
			r.ParseForm()
			if got := r.PostFormValue("media_type"); got != "REELS" {
				t.Fatalf("unexpected media_type %q", got)
			}
			if got := r.PostFormValue("video_url"); got != "https://cdn/v.mp4" {
				t.Fatalf("unexpected video_url %q", got)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/container-1"):
			statusCalls++
			status := "IN_PROGRESS"
			if statusCalls >= 2 {
				status = "FINISHED"
			}
			json.NewEncoder(w).Encode(map[string]string{"status_code": status})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/acct-1/media_publish"):
			r.ParseForm()
			if got := r.PostFormValue("creation_id"); got != "container-1" {
				t.Fatalf("unexpected creation_id %q", got)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	pub, err := publish.NewInstagram(publish.InstagramConfig{
		AccessToken:        "ig-token",
		AccountID:          "acct-1",
		BaseURL:            server.URL,
		ProcessingInterval: time.Millisecond,
		ProcessingMaxWait:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewInstagram failed: %v", err)
	}

	ref, err := pub.Publish(context.Background(), publish.Asset{RemoteURL: "https://cdn/v.mp4"}, meta())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ref != "media-9" {
		t.Fatalf("unexpected ref %q", ref)
	}
}

func TestInstagramProcessingErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status_code": "ERROR"})
	}))
	defer server.Close()

	pub, _ := publish.NewInstagram(publish.InstagramConfig{
		AccessToken:        "t",
		AccountID:          "acct-1",
		BaseURL:            server.URL,
		ProcessingInterval: time.Millisecond,
		ProcessingMaxWait:  time.Second,
	})
	if _, err := pub.Publish(context.Background(), publish.Asset{RemoteURL: "https://cdn/v.mp4"}, meta()); err == nil {
		t.Fatal("expected error for failed container processing")
	}
}

func TestPinterestCreatesPin(t *testing.T) {
	var gotPin struct {
		BoardID     string `json:"board_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		MediaSource struct {
			SourceType string `json:"source_type"`
			URL        string `json:"url"`
		} `json:"media_source"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pins" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pin-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		json.NewDecoder(r.Body).Decode(&gotPin)
		json.NewEncoder(w).Encode(map[string]string{"id": "pin-7"})
	}))
	defer server.Close()

	pub, err := publish.NewPinterest(publish.PinterestConfig{
		AccessToken: "pin-token",
		BoardID:     "board-1",
		BaseURL:     server.URL,
	})
	if err != nil {
		t.Fatalf("NewPinterest failed: %v", err)
	}

	longMeta := publish.Metadata{Title: strings.Repeat("a", 200), Description: strings.Repeat("b", 600)}
	ref, err := pub.Publish(context.Background(), publish.Asset{RemoteURL: "https://cdn/v.mp4"}, longMeta)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ref != "https://www.pinterest.com/pin/pin-7" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if gotPin.BoardID != "board-1" || gotPin.MediaSource.SourceType != "video_url" {
		t.Fatalf("unexpected pin payload %+v", gotPin)
	}
	if len(gotPin.Title) != 100 || len(gotPin.Description) != 500 {
		t.Fatalf("expected truncated title/description, got %d/%d", len(gotPin.Title), len(gotPin.Description))
	}
}

func TestTwitterUploadPollTweet(t *testing.T) {
	var statusCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/media/upload.json":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			if got := r.FormValue("media_category"); got != "tweet_video" {
				t.Fatalf("unexpected media_category %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"media_id_string": "m-1",
				"processing_info": map[string]any{"state": "pending"},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/media/upload.json":
			statusCalls++
			state := "in_progress"
			if statusCalls >= 2 {
				state = "succeeded"
			}
			json.NewEncoder(w).Encode(map[string]any{
				"media_id_string": "m-1",
				"processing_info": map[string]any{"state": state},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/tweets":
			var payload struct {
				Text  string `json:"text"`
				Media struct {
					MediaIDs []string `json:"media_ids"`
				} `json:"media"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			if len(payload.Media.MediaIDs) != 1 || payload.Media.MediaIDs[0] != "m-1" {
				t.Fatalf("unexpected media ids %v", payload.Media.MediaIDs)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "tweet-5"}})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	pub, err := publish.NewTwitter(publish.TwitterConfig{
		AccessToken:        "tw-token",
		UploadBaseURL:      server.URL,
		APIBaseURL:         server.URL,
		ProcessingInterval: time.Millisecond,
		ProcessingMaxWait:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewTwitter failed: %v", err)
	}

	ref, err := pub.Publish(context.Background(), publish.Asset{LocalPath: writeVideo(t)}, meta())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ref != "https://twitter.com/i/status/tweet-5" {
		t.Fatalf("unexpected ref %q", ref)
	}
}

func TestTwitterSkipsPollWithoutProcessingInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/media/upload.json":
			json.NewEncoder(w).Encode(map[string]any{"media_id_string": "m-2"})
		case r.Method == http.MethodGet && r.URL.Path == "/media/upload.json":
			json.NewEncoder(w).Encode(map[string]any{"media_id_string": "m-2"})
		case r.Method == http.MethodPost && r.URL.Path == "/tweets":
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "tweet-6"}})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	pub, _ := publish.NewTwitter(publish.TwitterConfig{
		AccessToken:        "t",
		UploadBaseURL:      server.URL,
		APIBaseURL:         server.URL,
		ProcessingInterval: time.Millisecond,
		ProcessingMaxWait:  time.Second,
	})
	if _, err := pub.Publish(context.Background(), publish.Asset{LocalPath: writeVideo(t)}, meta()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}
