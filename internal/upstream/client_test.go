package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "test-token", 5*time.Second)
}

func TestEntriesDecodesPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Variables["kind"] != "listing" {
			t.Errorf("expected kind listing, got %v", body.Variables["kind"])
		}
		w.Write([]byte(`{
			"data": {
				"entries": {
					"nodes": [
						{"id": "1", "handle": "corner-cafe", "fields": [
							{"key": "name", "value": "Corner Cafe"},
							{"key": "image", "reference": {"image": {"url": "https://cdn.example.com/a.jpg"}}}
						]}
					],
					"pageInfo": {"hasNextPage": true, "endCursor": "abc"}
				}
			}
		}`))
	})

	page, err := client.Entries(context.Background(), "listing", "")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(page.Entries))
	}
	entry := page.Entries[0]
	if entry.Handle != "corner-cafe" {
		t.Errorf("expected handle corner-cafe, got %q", entry.Handle)
	}
	if entry.Fields[1].Reference == nil || entry.Fields[1].Reference.Image.URL != "https://cdn.example.com/a.jpg" {
		t.Errorf("media reference not decoded: %+v", entry.Fields[1])
	}
	if !page.HasMore || page.Cursor != "abc" {
		t.Errorf("pagination state wrong: hasMore=%v cursor=%q", page.HasMore, page.Cursor)
	}
}

func TestEntriesSurfacesGraphQLErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "rate limited"}]}`))
	})

	_, err := client.Entries(context.Background(), "listing", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestEntriesSurfacesTransportErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Entries(context.Background(), "listing", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestMediaURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"node": {"image": {"url": "https://cdn.example.com/img.png"}}}}`))
	})

	url, err := client.MediaURL(context.Background(), "gid://content/MediaImage/42")
	if err != nil {
		t.Fatalf("MediaURL failed: %v", err)
	}
	if url != "https://cdn.example.com/img.png" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestMediaURLEmptyNode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"node": {}}}`))
	})

	url, err := client.MediaURL(context.Background(), "gid://content/MediaImage/43")
	if err != nil {
		t.Fatalf("MediaURL failed: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty url, got %q", url)
	}
}
