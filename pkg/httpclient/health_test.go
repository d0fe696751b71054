package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TESTS

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		resp := schema.HealthResponse{
			Status:   schema.StatusHealthy,
			Version:  "1.4.2",
			Services: map[string]string{"retrieval": "healthy", "speech": "healthy"},
			Uptime:   86400,
			Checked:  time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := newClient(t, srv.URL)

	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Healthy() {
		t.Fatalf("expected a healthy report, got %q", resp.Status)
	}
	if resp.Services["retrieval"] != "healthy" {
		t.Fatalf("expected the dependency statuses, got %v", resp.Services)
	}
}

func TestHealth_NoRetry(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, `{"detail":"unavailable"}`, http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.Health(context.Background())
	var apierr *client.APIError
	if !errors.As(err, &apierr) {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apierr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", apierr.Status)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected the probe not to be retried, got %d requests", got)
	}
}
