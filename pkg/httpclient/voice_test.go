package httpclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SERVERS

func newVoiceTestServer(t *testing.T, speaks chan<- schema.SpeakRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/voice/transcribe", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			http.Error(w, "audio part required", http.StatusBadRequest)
			return
		}
		resp := schema.TranscribeResponse{
			Text:       "What is dharma?",
			Language:   r.FormValue("language"),
			Confidence: 0.94,
			Duration:   3.2,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/v1/voice/speak", func(w http.ResponseWriter, r *http.Request) {
		var req schema.SpeakRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if speaks != nil {
			speaks <- req
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("RIFF fake audio"))
	})
	mux.HandleFunc("/api/v1/voice/voices", func(w http.ResponseWriter, r *http.Request) {
		resp := schema.ListVoicesResponse{
			Count: 2,
			Body: []schema.Voice{
				{Name: "aarav", Language: "hi", Default: true},
				{Name: "meera", Language: "hi"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func TestTranscribe(t *testing.T) {
	srv := newVoiceTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	resp, err := c.Transcribe(context.Background(), schema.TranscribeRequest{
		Audio: client.File{
			Path: "/recordings/question.wav",
			Body: bytes.NewReader([]byte{0x52, 0x49, 0x46, 0x46}),
		},
		Language: "HI",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "What is dharma?" {
		t.Fatalf("expected the transcription, got %q", resp.Text)
	}
	if resp.Language != "hi" {
		t.Fatalf("expected the language hint to be normalised to hi, got %q", resp.Language)
	}
	if resp.Confidence != 0.94 {
		t.Fatalf("expected the confidence score, got %v", resp.Confidence)
	}
}

func TestTranscribe_MissingAudio(t *testing.T) {
	srv := newVoiceTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	if _, err := c.Transcribe(context.Background(), schema.TranscribeRequest{}); !errors.Is(err, divyavaani.ErrBadParameter) {
		t.Fatalf("expected a bad parameter error, got %v", err)
	}
}

func TestSpeak(t *testing.T) {
	speaks := make(chan schema.SpeakRequest, 1)
	srv := newVoiceTestServer(t, speaks)
	defer srv.Close()
	c := newClient(t, srv.URL)

	var audio bytes.Buffer
	err := c.Speak(context.Background(), &audio, "Om Shanti",
		httpclient.WithVoice("aarav"),
		httpclient.WithLanguage("hi"),
		httpclient.WithFormat("ogg"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if audio.String() != "RIFF fake audio" {
		t.Fatalf("expected the audio bytes to be written, got %q", audio.String())
	}

	req := <-speaks
	if req.Text != "Om Shanti" || req.Voice != "aarav" || req.Format != "ogg" {
		t.Fatalf("expected the synthesis request on the wire, got %v", req)
	}
}

func TestSpeak_MissingText(t *testing.T) {
	srv := newVoiceTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	if err := c.Speak(context.Background(), io.Discard, "  "); !errors.Is(err, divyavaani.ErrBadParameter) {
		t.Fatalf("expected a bad parameter error, got %v", err)
	}
}

func TestListVoices(t *testing.T) {
	srv := newVoiceTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	resp, err := c.ListVoices(context.Background(), httpclient.WithLanguage("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Body) != 2 {
		t.Fatalf("expected 2 voices, got %v", resp)
	}
	if !resp.Body[0].Default {
		t.Fatal("expected the default voice to be marked")
	}
}
