package script_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reelforge/internal/catalog"
	"reelforge/internal/script"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func newClient(t *testing.T, serverURL string) *script.Client {
	t.Helper()
	client, err := script.NewClient(script.Config{
		APIKey:  "key",
		BaseURL: serverURL,
		Model:   "gpt-4-turbo-preview",
	},
		script.WithRetryBackoff(time.Millisecond, 2*time.Millisecond),
		script.WithSleeper(func(time.Duration) {}),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func product() catalog.ProductRecord {
	return catalog.ProductRecord{"name": "Widget", "description": "Spins", "price": "$9"}
}

func TestGenerateScriptReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages %+v", payload.Messages)
		}
		json.NewEncoder(w).Encode(completion("Check out the Widget!"))
	}))
	defer server.Close()

	text, err := newClient(t, server.URL).GenerateScript(context.Background(), product())
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if text != "Check out the Widget!" {
		t.Fatalf("unexpected script %q", text)
	}
}

func TestGenerateScriptRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(completion("eventually"))
	}))
	defer server.Close()

	text, err := newClient(t, server.URL).GenerateScript(context.Background(), product())
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if text != "eventually" {
		t.Fatalf("unexpected script %q", text)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGenerateScriptDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	if _, err := newClient(t, server.URL).GenerateScript(context.Background(), product()); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestGenerateScriptGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newClient(t, server.URL).GenerateScript(context.Background(), product()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGenerateScriptRejectsEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completion("   "))
	}))
	defer server.Close()

	if _, err := newClient(t, server.URL).GenerateScript(context.Background(), product()); err == nil {
		t.Fatal("expected error for empty completion content")
	}
}
