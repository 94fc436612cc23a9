package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAPIProbe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewAPIProbe(5 * time.Second)
	got := p.Run(context.Background(), srv.URL)

	if !got.Success {
		t.Errorf("expected success, got %+v", got)
	}
	if got.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", got.StatusCode)
	}
	if got.ErrorMessage != "" {
		t.Errorf("expected empty error message, got %q", got.ErrorMessage)
	}
	if got.ResponseTimeMs <= 0 {
		t.Errorf("expected positive response time, got %v", got.ResponseTimeMs)
	}
}

func TestAPIProbe_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewAPIProbe(5 * time.Second)
	got := p.Run(context.Background(), srv.URL)

	if got.Success {
		t.Error("expected failure on 404")
	}
	if got.StatusCode != 404 {
		t.Errorf("expected status 404, got %d", got.StatusCode)
	}
	if got.ErrorMessage != "HTTP 404" {
		t.Errorf("expected error message \"HTTP 404\", got %q", got.ErrorMessage)
	}
}

func TestAPIProbe_Timeout(t *testing.T) {
	timeout := 100 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * timeout)
	}))
	defer srv.Close()

	p := NewAPIProbe(timeout)
	got := p.Run(context.Background(), srv.URL)

	if got.Success {
		t.Error("expected failure on timeout")
	}
	if got.StatusCode != 0 {
		t.Errorf("expected status 0 on timeout, got %d", got.StatusCode)
	}
	if got.ErrorMessage != "Request timeout" {
		t.Errorf("expected \"Request timeout\", got %q", got.ErrorMessage)
	}
	if got.ResponseTimeMs < timeout.Seconds()*1000 {
		t.Errorf("expected response time >= %v ms, got %v", timeout.Seconds()*1000, got.ResponseTimeMs)
	}
}

func TestAPIProbe_ConnectionRefused(t *testing.T) {
	// Start and immediately close a server to get an address with
	// nothing listening on it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewAPIProbe(2 * time.Second)
	got := p.Run(context.Background(), url)

	if got.Success {
		t.Error("expected failure on refused connection")
	}
	if got.StatusCode != 0 {
		t.Errorf("expected status 0, got %d", got.StatusCode)
	}
	if !strings.HasPrefix(got.ErrorMessage, "Connection error: ") {
		t.Errorf("expected connection error message, got %q", got.ErrorMessage)
	}
}

func TestAPIProbe_ErrorMessageTruncated(t *testing.T) {
	p := NewAPIProbe(2 * time.Second)
	// An unresolvable host with a very long name produces a long error.
	host := strings.Repeat("long-subdomain.", 20) + "invalid"
	got := p.Run(context.Background(), "http://"+host)

	if got.Success {
		t.Error("expected failure")
	}
	prefixLen := len("Unexpected error: ")
	if len(got.ErrorMessage) > prefixLen+100 {
		t.Errorf("expected detail capped at 100 chars, got %d: %q", len(got.ErrorMessage), got.ErrorMessage)
	}
}

func TestAPIProbe_InvalidURL(t *testing.T) {
	p := NewAPIProbe(2 * time.Second)
	got := p.Run(context.Background(), "http://bad url with spaces")

	if got.Success || got.StatusCode != 0 {
		t.Errorf("expected transport-level failure, got %+v", got)
	}
	if got.ErrorMessage == "" {
		t.Error("expected an error message")
	}
}
