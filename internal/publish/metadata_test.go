package publish

import (
	"strings"
	"testing"
)

func TestTruncateRuneSafe(t *testing.T) {
	if got := truncate("héllo wörld", 5); got != "héllo" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
	if got := truncate("anything", 0); got != "anything" {
		t.Fatalf("expected zero limit to disable truncation, got %q", got)
	}
}

func TestBuildCaptionJoinsPartsAndHashtags(t *testing.T) {
	caption := buildCaption(Metadata{
		Title:       "Widget - Spin faster",
		Description: "The widget spins.",
		Tags:        []string{"gadgets", "cool tools"},
	})
	if !strings.HasPrefix(caption, "Widget - Spin faster\n\nThe widget spins.") {
		t.Fatalf("unexpected caption prefix %q", caption)
	}
	if !strings.Contains(caption, "#gadgets #cooltools") {
		t.Fatalf("expected hashtags without spaces, got %q", caption)
	}
}

func TestBuildCaptionTruncated(t *testing.T) {
	caption := buildCaption(Metadata{Description: strings.Repeat("x", 3000)})
	if len([]rune(caption)) != instagramCaptionLimit {
		t.Fatalf("expected caption capped at %d runes, got %d", instagramCaptionLimit, len([]rune(caption)))
	}
}

func TestBuildTweetTextCapped(t *testing.T) {
	text := buildTweetText(Metadata{
		Title: strings.Repeat("y", 300),
		Tags:  []string{"gadgets"},
	})
	if len([]rune(text)) != twitterTextLimit {
		t.Fatalf("expected tweet capped at %d runes, got %d", twitterTextLimit, len([]rune(text)))
	}
}

func TestBuildTweetTextHashtags(t *testing.T) {
	text := buildTweetText(Metadata{Title: "Widget", Tags: []string{"gadgets", "cool tools"}})
	if text != "Widget\n\n#gadgets #cooltools" {
		t.Fatalf("unexpected tweet text %q", text)
	}
}

func TestOutcomeSucceeded(t *testing.T) {
	if !Success("ref").Succeeded() {
		t.Fatal("expected success outcome")
	}
	if Failure("boom").Succeeded() {
		t.Fatal("expected failure outcome")
	}
}
