package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pefitness/internal/adapters/http/perf"
)

func newTestClient(url string, collector *perf.Collector) *OpenRouterClient {
	return NewOpenRouterClient(OpenRouterConfig{
		BaseURL:   url + "/",
		Model:     "google/gemini-2.0-flash-001",
		Timeout:   5 * time.Second,
		Collector: collector,
	})
}

// TestComplete_Success tests the wire format and verbatim content.
func TestComplete_Success(t *testing.T) {
	var gotAuth, gotType, gotPath string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  加油！\n"}}]}`))
	}))
	defer srv.Close()

	collector := perf.NewCollector(10)
	text, err := newTestClient(srv.URL, collector).Complete(context.Background(), "sk-test", "prompt text")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "  加油！\n" {
		t.Errorf("text = %q, want verbatim content", text)
	}
	if gotAuth != "Bearer sk-test" || gotType != "application/json" {
		t.Errorf("headers = %q / %q", gotAuth, gotType)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.Model != "google/gemini-2.0-flash-001" || len(gotBody.Messages) != 1 ||
		gotBody.Messages[0].Role != "user" || gotBody.Messages[0].Content != "prompt text" {
		t.Errorf("body = %+v", gotBody)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 5)
	if snap.Completions != 1 || snap.CompletionFailures != 0 {
		t.Errorf("completions = %d/%d", snap.Completions, snap.CompletionFailures)
	}
}

// TestComplete_UpstreamErrors tests every upstream failure shape.
func TestComplete_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"401 with message", http.StatusUnauthorized, `{"error":{"message":"No auth credentials found"}}`, "No auth credentials found"},
		{"500 without body", http.StatusInternalServerError, ``, ""},
		{"200 with error object", http.StatusOK, `{"error":{"message":"model overloaded"}}`, "model overloaded"},
		{"200 no choices", http.StatusOK, `{"choices":[]}`, "no completion returned"},
		{"200 malformed", http.StatusOK, `<html>gateway</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, nil).Complete(context.Background(), "k", "p")
			var up *UpstreamError
			if !errors.As(err, &up) {
				t.Fatalf("err = %v, want *UpstreamError", err)
			}
			if up.Message != tt.message || up.Status != tt.status {
				t.Errorf("UpstreamError = %+v, want status %d message %q", up, tt.status, tt.message)
			}
		})
	}
}

// TestComplete_TransportError tests an unreachable endpoint.
func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	collector := perf.NewCollector(10)
	_, err := newTestClient(url, collector).Complete(context.Background(), "k", "p")
	var tr *TransportError
	if !errors.As(err, &tr) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if collector.Snapshot(time.Now().Add(-time.Minute), 5).CompletionFailures != 1 {
		t.Error("failed completion not counted")
	}
}

// TestComplete_ContextDeadline tests that a slow endpoint surfaces as a transport failure.
func TestComplete_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(srv.URL, nil).Complete(ctx, "k", "p")
	var tr *TransportError
	if !errors.As(err, &tr) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want TransportError wrapping DeadlineExceeded", err)
	}
}
