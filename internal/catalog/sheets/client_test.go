package sheets_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelforge/internal/catalog/sheets"
)

func newClient(t *testing.T, handler http.Handler) *sheets.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := sheets.NewClient(sheets.Config{
		SpreadsheetID: "sheet-123",
		BaseURL:       server.URL,
		APIToken:      "token",
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestListProductsMapsHeaderRow(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/spreadsheets/sheet-123/values/") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"values": [][]any{
				{"name", "description", "price"},
				{"Widget", "Spins", "$9"},
				{"Gadget", "Blinks"},
			},
		})
	})

	products, err := newClient(t, handler).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name() != "Widget" || products[0].Price() != "$9" {
		t.Fatalf("unexpected first product %+v", products[0])
	}
	// Short rows pad missing trailing cells.
	if products[1].Price() != "" {
		t.Fatalf("expected empty price for short row, got %q", products[1].Price())
	}
}

func TestListProductsEmptySheet(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"values": [][]any{}})
	})
	products, err := newClient(t, handler).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected no products, got %d", len(products))
	}
}

func TestListProductsUpstreamError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	if _, err := newClient(t, handler).ListProducts(context.Background()); err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestMarkProcessedWritesTimestampColumn(t *testing.T) {
	var gotPath, gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{
					{"name", "description", "price"},
					{"Widget", "Spins", "$9"},
				},
			})
			return
		}
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected method %s", r.Method)
		}
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	client := newClient(t, handler)
	// List first so the client learns the header width.
	if _, err := client.ListProducts(context.Background()); err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	processedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := client.MarkProcessed(context.Background(), 0, processedAt); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	// Three headers, so the timestamp lands in column D of sheet row 2.
	if !strings.HasSuffix(gotPath, "/values/D2") {
		t.Fatalf("expected write to D2, got path %s", gotPath)
	}
	if !strings.Contains(gotBody, "2026-03-10T09:00:00Z") {
		t.Fatalf("expected RFC3339 timestamp in body, got %s", gotBody)
	}
}

func TestMarkProcessedRejectsNegativeRow(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if err := newClient(t, handler).MarkProcessed(context.Background(), -1, time.Now()); err == nil {
		t.Fatal("expected validation error for negative row")
	}
}
