package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// hits records the arrival time of each request
type hits struct {
	mu    sync.Mutex
	times []time.Time
}

func (h *hits) add() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.times = append(h.times, time.Now())
	return len(h.times)
}

func (h *hits) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.times)
}

// gaps returns the durations between consecutive requests
func (h *hits) gaps() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	var gaps []time.Duration
	for i := 1; i < len(h.times); i++ {
		gaps = append(gaps, h.times[i].Sub(h.times[i-1]))
	}
	return gaps
}

// sequenceServer responds with the given statuses in order, repeating the
// last one. Non-2xx responses carry a JSON error body.
func sequenceServer(t *testing.T, statuses ...int) (*httptest.Server, *hits) {
	t.Helper()
	h := new(hits)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := h.add()
		status := statuses[len(statuses)-1]
		if n <= len(statuses) {
			status = statuses[n-1]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			fmt.Fprintf(w, `{"detail":"%v"}`, http.StatusText(status))
		} else {
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, h
}

// failingTransport fails every roundtrip, counting calls
type failingTransport struct {
	mu    sync.Mutex
	calls int
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, errors.New("connection reset")
}

func (f *failingTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_do_001(t *testing.T) {
	// A successful GET decodes the response body
	assert := assert.New(t)
	srv, h := sequenceServer(t, http.StatusOK)

	c, err := client.New(client.OptEndpoint(srv.URL))
	assert.NoError(err)

	var out struct {
		Ok bool `json:"ok"`
	}
	assert.NoError(c.Do(nil, &out))
	assert.True(out.Ok)
	assert.Equal(1, h.count())
}

func Test_do_002(t *testing.T) {
	// Three 503 responses followed by a 200 succeed after exactly four
	// attempts, with the backoff delay doubling between attempts
	assert := assert.New(t)
	srv, h := sequenceServer(t, http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK)

	c, err := client.New(
		client.OptEndpoint(srv.URL),
		client.OptRetry(3, 20*time.Millisecond),
	)
	assert.NoError(err)

	var out struct {
		Ok bool `json:"ok"`
	}
	assert.NoError(c.Do(nil, &out))
	assert.True(out.Ok)
	assert.Equal(4, h.count())

	gaps := h.gaps()
	assert.Len(gaps, 3)
	assert.GreaterOrEqual(gaps[0], 20*time.Millisecond)
	assert.Greater(gaps[1], gaps[0])
	assert.Greater(gaps[2], gaps[1])
}

func Test_do_003(t *testing.T) {
	// A 400 fails immediately without retries
	assert := assert.New(t)
	srv, h := sequenceServer(t, http.StatusBadRequest)

	c, err := client.New(client.OptEndpoint(srv.URL), client.OptRetry(3, 10*time.Millisecond))
	assert.NoError(err)

	err = c.Do(nil, nil)
	assert.Error(err)
	assert.Equal(1, h.count())

	var apiErr *client.APIError
	assert.ErrorAs(err, &apiErr)
	assert.Equal(client.ErrorTypeValidation, apiErr.Type)
	assert.Equal(http.StatusBadRequest, apiErr.Status)
	assert.Equal("Bad Request", apiErr.Message)
}

func Test_do_004(t *testing.T) {
	// A 500 is not a retryable status
	assert := assert.New(t)
	srv, h := sequenceServer(t, http.StatusInternalServerError)

	c, err := client.New(client.OptEndpoint(srv.URL), client.OptRetry(3, 10*time.Millisecond))
	assert.NoError(err)

	err = c.Do(nil, nil)
	assert.Error(err)
	assert.Equal(1, h.count())

	var apiErr *client.APIError
	assert.ErrorAs(err, &apiErr)
	assert.Equal(client.ErrorTypeAPI, apiErr.Type)
}

func Test_do_005(t *testing.T) {
	// OptSkipRetry forces a single attempt for a retryable status
	assert := assert.New(t)
	srv, h := sequenceServer(t, http.StatusServiceUnavailable)

	c, err := client.New(client.OptEndpoint(srv.URL), client.OptRetry(3, 10*time.Millisecond))
	assert.NoError(err)

	err = c.Do(nil, nil, client.OptSkipRetry())
	assert.Error(err)
	assert.Equal(1, h.count())
}

func Test_do_006(t *testing.T) {
	// Transport failures are retried, and returned as a network error
	// once the attempts are exhausted
	assert := assert.New(t)
	transport := new(failingTransport)

	c, err := client.New(
		client.OptEndpoint("http://localhost:1"),
		client.OptTransport(transport),
		client.OptRetry(2, time.Millisecond),
	)
	assert.NoError(err)

	err = c.Do(nil, nil)
	assert.Error(err)
	assert.Equal(3, transport.count())

	var apiErr *client.APIError
	assert.ErrorAs(err, &apiErr)
	assert.Equal(client.ErrorTypeNetwork, apiErr.Type)
	assert.Equal(0, apiErr.Status)
}

func Test_do_007(t *testing.T) {
	// The per-attempt deadline fails with a timeout error, without retry
	assert := assert.New(t)
	h := new(hits)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.add()
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(
		client.OptEndpoint(srv.URL),
		client.OptTimeout(50*time.Millisecond),
		client.OptRetry(3, 10*time.Millisecond),
	)
	assert.NoError(err)

	err = c.Do(nil, nil)
	assert.Error(err)
	assert.Equal(1, h.count())

	var apiErr *client.APIError
	assert.ErrorAs(err, &apiErr)
	assert.Equal(client.ErrorTypeTimeout, apiErr.Type)
	assert.Equal(http.StatusRequestTimeout, apiErr.Status)
}

func Test_do_008(t *testing.T) {
	// Cancelling the context during backoff returns the context error,
	// not an API error
	assert := assert.New(t)
	srv, _ := sequenceServer(t, http.StatusServiceUnavailable)

	c, err := client.New(client.OptEndpoint(srv.URL), client.OptRetry(3, time.Second))
	assert.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err = c.DoWithContext(ctx, nil, nil)
	assert.ErrorIs(err, context.Canceled)

	var apiErr *client.APIError
	assert.False(errors.As(err, &apiErr))
}

func Test_do_009(t *testing.T) {
	// Method, path, query, headers and body all arrive as sent
	assert := assert.New(t)
	type thing struct {
		Name string `json:"name"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPatch, r.Method)
		assert.Equal("/api/v1/things/42", r.URL.Path)
		assert.Equal("5", r.URL.Query().Get("limit"))
		assert.Equal("application/json", r.Header.Get("Content-Type"))
		assert.Equal("Bearer secret", r.Header.Get("Authorization"))

		var in thing
		assert.NoError(json.NewDecoder(r.Body).Decode(&in))
		assert.Equal("dharma", in.Name)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(in)
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(client.OptEndpoint(srv.URL + "/api/v1"))
	assert.NoError(err)

	payload, err := client.NewJSONRequestEx(http.MethodPatch, thing{Name: "dharma"}, "")
	assert.NoError(err)

	var out thing
	assert.NoError(c.Do(payload, &out,
		client.OptPath("things", "42"),
		client.OptQuery(url.Values{"limit": []string{"5"}}),
		client.OptToken(client.Token{Scheme: client.Bearer, Value: "secret"}),
	))
	assert.Equal("dharma", out.Name)
}

func Test_do_010(t *testing.T) {
	// Server-sent events are dispatched to the stream callback in order
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(client.ContentTypeTextStream, r.Header.Get("Accept"))
		w.Header().Set("Content-Type", client.ContentTypeTextStream)
		flusher := w.(http.Flusher)
		for _, frame := range [][2]string{
			{"start", `{}`},
			{"token", `{"token":"Om"}`},
			{"token", `{"token":" Shanti"}`},
			{"done", `{}`},
		} {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame[0], frame[1])
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(client.OptEndpoint(srv.URL))
	assert.NoError(err)

	var events []string
	err = c.Do(nil, nil,
		client.OptReqHeader("Accept", client.ContentTypeTextStream),
		client.OptTextStreamCallback(func(event client.TextStreamEvent) error {
			events = append(events, event.Event)
			return nil
		}),
	)
	assert.NoError(err)
	assert.Equal([]string{"start", "token", "token", "done"}, events)
}

func Test_do_011(t *testing.T) {
	// DoStream returns the open response for pull-based decoding, and
	// classifies a failed request without retrying it
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", client.ContentTypeTextStream)
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "event: token\ndata: {\"token\":\"a\"}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		flusher.Flush()
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(client.OptEndpoint(srv.URL))
	assert.NoError(err)

	resp, err := c.DoStream(context.Background(), nil)
	assert.NoError(err)
	defer resp.Body.Close()

	scanner := client.NewTextScanner(resp.Body)
	event, err := scanner.Next()
	assert.NoError(err)
	assert.Equal("token", event.Event)
	event, err = scanner.Next()
	assert.NoError(err)
	assert.Equal("done", event.Event)

	// A failed stream request returns an APIError
	failed, h := sequenceServer(t, http.StatusServiceUnavailable)
	c2, err := client.New(client.OptEndpoint(failed.URL), client.OptRetry(3, time.Millisecond))
	assert.NoError(err)

	_, err = c2.DoStream(context.Background(), nil)
	assert.Error(err)
	assert.Equal(1, h.count())

	var apiErr *client.APIError
	assert.ErrorAs(err, &apiErr)
	assert.Equal(client.ErrorTypeAPI, apiErr.Type)
}

func Test_do_012(t *testing.T) {
	// Multipart payloads carry form fields and file parts
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(r.ParseMultipartForm(1 << 20))
		assert.Equal("hi", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		assert.NoError(err)
		defer file.Close()
		assert.Equal("scripture.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(client.OptEndpoint(srv.URL))
	assert.NoError(err)

	payload, err := client.NewMultipartRequest(struct {
		File     client.File `json:"file"`
		Language string      `json:"language,omitempty"`
	}{
		File:     client.File{Path: "/tmp/scripture.pdf", Body: strings.NewReader("%PDF-1.4")},
		Language: "hi",
	}, client.ContentTypeJson)
	assert.NoError(err)

	var out struct {
		Ok bool `json:"ok"`
	}
	assert.NoError(c.Do(payload, &out))
	assert.True(out.Ok)
}

func Test_do_013(t *testing.T) {
	// A 502 is retried until a successful response arrives
	assert := assert.New(t)
	srv, h := sequenceServer(t, http.StatusBadGateway, http.StatusOK)

	c, err := client.New(client.OptEndpoint(srv.URL), client.OptRetry(3, time.Millisecond))
	assert.NoError(err)

	assert.NoError(c.Do(nil, nil))
	assert.Equal(2, h.count())
}
