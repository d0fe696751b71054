package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SERVERS

func newConversationTestServer(t *testing.T, queries chan<- url.Values) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if queries != nil {
			queries <- r.URL.Query()
		}
		resp := schema.ListConversationResponse{
			Count: 2,
			Limit: types.Ptr(uint(5)),
			Body: []*schema.Conversation{
				{ID: "conv-1", Title: "On duty"},
				{ID: "conv-2", Title: "On devotion"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/v1/conversations/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/conversations/")
		switch r.Method {
		case http.MethodGet:
			if id != "conv-1" {
				http.Error(w, `{"detail":"conversation not found"}`, http.StatusNotFound)
				return
			}
			resp := schema.Conversation{
				ID: "conv-1",
				Messages: []schema.Message{
					{Role: schema.RoleUser, Text: "What is dharma?"},
					{Role: schema.RoleAssistant, Text: "Dharma is the path."},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		case http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	return httptest.NewServer(mux)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func TestListConversations(t *testing.T) {
	queries := make(chan url.Values, 1)
	srv := newConversationTestServer(t, queries)
	defer srv.Close()
	c := newClient(t, srv.URL)

	resp, err := c.ListConversations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Body) != 2 {
		t.Fatalf("expected 2 conversations, got %v", resp)
	}
	if resp.Body[0].ID != "conv-1" {
		t.Fatalf("expected conv-1 first, got %q", resp.Body[0].ID)
	}

	// The client user scopes the listing
	if query := <-queries; query.Get("user_id") != c.User() {
		t.Fatalf("expected the listing to be scoped to %q, got %q", c.User(), query.Get("user_id"))
	}
}

func TestListConversations_Pagination(t *testing.T) {
	queries := make(chan url.Values, 1)
	srv := newConversationTestServer(t, queries)
	defer srv.Close()
	c := newClient(t, srv.URL)

	if _, err := c.ListConversations(context.Background(),
		httpclient.WithUser("devotee-7"),
		httpclient.WithLimit(types.Ptr(uint(5))),
		httpclient.WithOffset(10),
	); err != nil {
		t.Fatal(err)
	}

	query := <-queries
	if query.Get("user_id") != "devotee-7" {
		t.Fatalf("expected user_id=devotee-7, got %q", query.Get("user_id"))
	}
	if query.Get("limit") != "5" {
		t.Fatalf("expected limit=5, got %q", query.Get("limit"))
	}
	if query.Get("offset") != "10" {
		t.Fatalf("expected offset=10, got %q", query.Get("offset"))
	}
}

func TestGetConversation(t *testing.T) {
	srv := newConversationTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	resp, err := c.GetConversation(context.Background(), "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "conv-1" {
		t.Fatalf("expected conv-1, got %q", resp.ID)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	srv := newConversationTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.GetConversation(context.Background(), "conv-404")
	var apierr *client.APIError
	if !errors.As(err, &apierr) {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apierr.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", apierr.Status)
	}
	if apierr.Message != "conversation not found" {
		t.Fatalf("expected the server detail message, got %q", apierr.Message)
	}
}

func TestGetConversation_MissingID(t *testing.T) {
	srv := newConversationTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	if _, err := c.GetConversation(context.Background(), ""); !errors.Is(err, divyavaani.ErrBadParameter) {
		t.Fatalf("expected a bad parameter error, got %v", err)
	}
}

func TestDeleteConversation(t *testing.T) {
	srv := newConversationTestServer(t, nil)
	defer srv.Close()
	c := newClient(t, srv.URL)

	if err := c.DeleteConversation(context.Background(), "conv-1"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteConversation(context.Background(), ""); !errors.Is(err, divyavaani.ErrBadParameter) {
		t.Fatalf("expected a bad parameter error, got %v", err)
	}
}
