package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SERVERS

func newUploadTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file part required", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := schema.UploadResponse{
			ID:       "doc-1",
			Name:     header.Filename,
			Size:     int64(len(data)),
			Status:   "pending",
			Language: r.FormValue("language"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func TestUpload(t *testing.T) {
	srv := newUploadTestServer(t)
	defer srv.Close()
	c := newClient(t, srv.URL)

	resp, err := c.Upload(context.Background(), schema.UploadRequest{
		File: client.File{
			Path: "/texts/gita-commentary.pdf",
			Body: strings.NewReader("%PDF-1.4 commentary"),
		},
		Title:    "Gita commentary",
		Language: "SA",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "doc-1" {
		t.Fatalf("expected doc-1, got %q", resp.ID)
	}
	if resp.Name != "gita-commentary.pdf" {
		t.Fatalf("expected the file name without its directory, got %q", resp.Name)
	}
	if resp.Size != int64(len("%PDF-1.4 commentary")) {
		t.Fatalf("expected the full file size, got %d", resp.Size)
	}
	if resp.Language != "sa" {
		t.Fatalf("expected the language to be normalised to sa, got %q", resp.Language)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	srv := newUploadTestServer(t)
	defer srv.Close()
	c := newClient(t, srv.URL)

	if _, err := c.Upload(context.Background(), schema.UploadRequest{Title: "no file"}); !errors.Is(err, divyavaani.ErrBadParameter) {
		t.Fatalf("expected a bad parameter error, got %v", err)
	}
}
