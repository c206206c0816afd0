package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const robotsBody = `User-agent: *
Disallow: /private/
Crawl-delay: 2
`

func newRobotsServer(t *testing.T, body string, status int, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	server := newRobotsServer(t, robotsBody, http.StatusOK, nil)
	checker := NewRobotsChecker("chemvet", 5*time.Second)

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/products")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected /products to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %s", delay)
	}

	allowed, _, err = checker.CanFetch(context.Background(), server.URL+"/private/prices")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if allowed {
		t.Error("expected /private/ to be disallowed")
	}
}

func TestRobotsChecker_CachesPerHost(t *testing.T) {
	var hits int32
	server := newRobotsServer(t, robotsBody, http.StatusOK, &hits)
	checker := NewRobotsChecker("chemvet", 5*time.Second)

	for i := 0; i < 3; i++ {
		if _, _, err := checker.CanFetch(context.Background(), server.URL+"/products"); err != nil {
			t.Fatalf("CanFetch failed: %v", err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 robots.txt fetch, got %d", got)
	}

	checker.Clear()
	if _, _, err := checker.CanFetch(context.Background(), server.URL+"/products"); err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected refetch after Clear, got %d fetches", got)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	checker := NewRobotsChecker("chemvet", 5*time.Second)
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("expected everything allowed when robots.txt is missing")
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker("chemvet", time.Second)

	allowed, delay, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/page")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed || delay != 0 {
		t.Errorf("expected allow with no delay when robots.txt is unreachable, got %v %s", allowed, delay)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chemvet/0.1.0", "chemvet"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "Mozilla"},
		{"chemvet", "chemvet"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.in); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
