package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCachesWithETag(t *testing.T) {
	t.Parallel()

	const payload = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(payload))
	}))
	defer server.Close()

	fetcher := NewFetcher(t.TempDir())

	body, fromCache, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if fromCache {
		t.Error("first fetch should not come from cache")
	}
	if string(body) != payload {
		t.Errorf("body = %q", body)
	}

	body, fromCache, err = fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !fromCache {
		t.Error("second fetch should come from cache after a 304")
	}
	if string(body) != payload {
		t.Errorf("cached body = %q", body)
	}
	if requests != 2 {
		t.Errorf("server saw %d requests, want 2", requests)
	}
}

func TestFetchFallsBackToCacheOnServerError(t *testing.T) {
	t.Parallel()

	const payload = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	fail := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	fetcher := NewFetcher(t.TempDir())

	if _, _, err := fetcher.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	fail = true
	body, fromCache, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch with failing server: %v", err)
	}
	if !fromCache {
		t.Error("should have fallen back to the cached body")
	}
	if string(body) != payload {
		t.Errorf("body = %q", body)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(t.TempDir())
	if _, _, err := fetcher.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty URL")
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	got := redactURL("https://example.com/private/feed.ics?token=secret")
	if got != "https://example.com/...(redacted)" {
		t.Errorf("redactURL = %q", got)
	}
	if redactURL("not a url") != "ics://...(redacted)" {
		t.Errorf("redactURL of garbage = %q", redactURL("not a url"))
	}
}
