package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

func uintPtr(v uint) *uint { return &v }

// testConversation returns a conversation with one question and answer.
func testConversation(id, userID string) *schema.Conversation {
	c := &schema.Conversation{
		ID:       id,
		UserID:   userID,
		Title:    "What is karma?",
		Language: "en",
	}
	c.Append(schema.Message{Role: schema.RoleUser, Text: "What is karma?"})
	c.Append(schema.Message{
		Role: schema.RoleAssistant,
		Text: "Karma is the law of cause and effect.",
		Sources: []schema.Source{
			{Title: "Bhagavad Gita", Reference: "2.47"},
		},
	})
	return c
}

///////////////////////////////////////////////////////////////////////////////
// SHARED CONVERSATION STORE TESTS

type conversationStoreTest struct {
	Name string
	Fn   func(*testing.T, schema.ConversationStore)
}

var conversationStoreTests = []conversationStoreTest{
	// Set
	{"SetAndGet", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		assert.NoError(s.SetConversation(ctx, testConversation("conv-1", "user-1")))

		got, err := s.GetConversation(ctx, "conv-1")
		assert.NoError(err)
		assert.Equal("conv-1", got.ID)
		assert.Equal("user-1", got.UserID)
		assert.Equal("What is karma?", got.Title)
		assert.Equal("en", got.Language)
		assert.Len(got.Messages, 2)
		assert.Equal(schema.RoleAssistant, got.Messages[1].Role)
		assert.Len(got.Messages[1].Sources, 1)
	}},
	{"SetNil", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		err := s.SetConversation(context.Background(), nil)
		assert.Error(err)
		assert.ErrorIs(err, divyavaani.ErrBadParameter)
	}},
	{"SetMissingID", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		err := s.SetConversation(context.Background(), &schema.Conversation{UserID: "user-1"})
		assert.Error(err)
		assert.ErrorIs(err, divyavaani.ErrBadParameter)
	}},
	{"SetUnsafeID", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		err := s.SetConversation(context.Background(), &schema.Conversation{ID: "../escape"})
		assert.Error(err)
		assert.ErrorIs(err, divyavaani.ErrBadParameter)
	}},
	{"SetStampsTimestamps", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		c := &schema.Conversation{ID: "conv-1", UserID: "user-1"}
		assert.NoError(s.SetConversation(ctx, c))

		got, err := s.GetConversation(ctx, "conv-1")
		assert.NoError(err)
		assert.False(got.Created.IsZero())
		assert.False(got.Modified.IsZero())
	}},
	{"SetPreservesTimestamps", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		modified := time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)
		c := &schema.Conversation{ID: "conv-1", Created: created, Modified: modified}
		assert.NoError(s.SetConversation(ctx, c))

		got, err := s.GetConversation(ctx, "conv-1")
		assert.NoError(err)
		assert.True(got.Created.Equal(created))
		assert.True(got.Modified.Equal(modified))
	}},
	{"SetOverwrites", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		first := &schema.Conversation{ID: "conv-1", Title: "first"}
		assert.NoError(s.SetConversation(ctx, first))

		second := testConversation("conv-1", "user-1")
		second.Title = "second"
		assert.NoError(s.SetConversation(ctx, second))

		got, err := s.GetConversation(ctx, "conv-1")
		assert.NoError(err)
		assert.Equal("second", got.Title)
		assert.Len(got.Messages, 2)
	}},

	// Get
	{"GetNotFound", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		_, err := s.GetConversation(context.Background(), "nonexistent")
		assert.Error(err)
		assert.ErrorIs(err, divyavaani.ErrNotFound)
	}},

	// Delete
	{"DeleteByID", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		assert.NoError(s.SetConversation(ctx, testConversation("conv-1", "user-1")))
		assert.NoError(s.DeleteConversation(ctx, "conv-1"))

		_, err := s.GetConversation(ctx, "conv-1")
		assert.Error(err)
	}},
	{"DeleteNotFound", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		err := s.DeleteConversation(context.Background(), "nonexistent")
		assert.Error(err)
		assert.ErrorIs(err, divyavaani.ErrNotFound)
	}},

	// List
	{"ListEmpty", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		resp, err := s.ListConversations(context.Background(), schema.ListConversationRequest{})
		assert.NoError(err)
		assert.Empty(resp.Body)
		assert.Equal(uint(0), resp.Count)
	}},
	{"ListAll", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		for i := range 3 {
			assert.NoError(s.SetConversation(ctx, testConversation(fmt.Sprintf("conv-%d", i), "user-1")))
		}

		resp, err := s.ListConversations(ctx, schema.ListConversationRequest{})
		assert.NoError(err)
		assert.Len(resp.Body, 3)
		assert.Equal(uint(3), resp.Count)
	}},
	{"ListOrderedByModified", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()
		now := time.Now()

		oldest := &schema.Conversation{ID: "conv-oldest", Modified: now.Add(-2 * time.Hour)}
		middle := &schema.Conversation{ID: "conv-middle", Modified: now.Add(-time.Hour)}
		newest := &schema.Conversation{ID: "conv-newest", Modified: now}
		assert.NoError(s.SetConversation(ctx, middle))
		assert.NoError(s.SetConversation(ctx, oldest))
		assert.NoError(s.SetConversation(ctx, newest))

		resp, err := s.ListConversations(ctx, schema.ListConversationRequest{})
		assert.NoError(err)
		assert.Len(resp.Body, 3)
		assert.Equal("conv-newest", resp.Body[0].ID)
		assert.Equal("conv-middle", resp.Body[1].ID)
		assert.Equal("conv-oldest", resp.Body[2].ID)
	}},
	{"ListAfterDelete", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		assert.NoError(s.SetConversation(ctx, testConversation("conv-doomed", "user-1")))
		assert.NoError(s.SetConversation(ctx, testConversation("conv-keeper", "user-1")))
		assert.NoError(s.DeleteConversation(ctx, "conv-doomed"))

		resp, err := s.ListConversations(ctx, schema.ListConversationRequest{})
		assert.NoError(err)
		assert.Len(resp.Body, 1)
		assert.Equal("conv-keeper", resp.Body[0].ID)
	}},
	{"ListFiltersByUser", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		assert.NoError(s.SetConversation(ctx, testConversation("conv-a1", "user-a")))
		assert.NoError(s.SetConversation(ctx, testConversation("conv-a2", "user-a")))
		assert.NoError(s.SetConversation(ctx, testConversation("conv-b1", "user-b")))

		resp, err := s.ListConversations(ctx, schema.ListConversationRequest{UserID: "user-a"})
		assert.NoError(err)
		assert.Len(resp.Body, 2)
		assert.Equal(uint(2), resp.Count)

		resp, err = s.ListConversations(ctx, schema.ListConversationRequest{UserID: "user-b"})
		assert.NoError(err)
		assert.Len(resp.Body, 1)
		assert.Equal("conv-b1", resp.Body[0].ID)

		// No filter returns all
		resp, err = s.ListConversations(ctx, schema.ListConversationRequest{})
		assert.NoError(err)
		assert.Len(resp.Body, 3)
	}},
	{"ListPagination", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()
		now := time.Now()

		// conv-0 is the most recently modified, conv-4 the least
		for i := range 5 {
			assert.NoError(s.SetConversation(ctx, &schema.Conversation{
				ID:       fmt.Sprintf("conv-%d", i),
				Modified: now.Add(-time.Duration(i) * time.Minute),
			}))
		}

		resp, err := s.ListConversations(ctx, schema.ListConversationRequest{Offset: 1, Limit: uintPtr(2)})
		assert.NoError(err)
		assert.Equal(uint(5), resp.Count)
		assert.Len(resp.Body, 2)
		assert.Equal("conv-1", resp.Body[0].ID)
		assert.Equal("conv-2", resp.Body[1].ID)

		// Offset beyond the end returns an empty page
		resp, err = s.ListConversations(ctx, schema.ListConversationRequest{Offset: 10})
		assert.NoError(err)
		assert.Equal(uint(5), resp.Count)
		assert.Empty(resp.Body)

		// Zero limit returns an empty page
		resp, err = s.ListConversations(ctx, schema.ListConversationRequest{Limit: uintPtr(0)})
		assert.NoError(err)
		assert.Equal(uint(5), resp.Count)
		assert.Empty(resp.Body)
	}},

	// Round-trip
	{"AppendThenSetPersists", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		ctx := context.Background()

		c := &schema.Conversation{ID: "conv-1", UserID: "user-1"}
		assert.NoError(s.SetConversation(ctx, c))

		c.Append(schema.Message{Role: schema.RoleUser, Text: "What is dharma?"})
		c.Append(schema.Message{Role: schema.RoleAssistant, Text: "Dharma is righteous duty."})
		assert.NoError(s.SetConversation(ctx, c))

		got, err := s.GetConversation(ctx, "conv-1")
		assert.NoError(err)
		assert.Len(got.Messages, 2)
		assert.Equal("What is dharma?", got.Messages[0].Text)
		assert.Equal("Dharma is righteous duty.", got.Messages[1].Text)
	}},

	// Concurrency
	{"ConcurrentSets", func(t *testing.T, s schema.ConversationStore) {
		assert := assert.New(t)
		const n = 20
		var wg sync.WaitGroup
		errs := make([]error, n)
		wg.Add(n)
		for i := range n {
			go func(i int) {
				defer wg.Done()
				errs[i] = s.SetConversation(context.Background(), testConversation(fmt.Sprintf("conv-%03d", i), "user-1"))
			}(i)
		}
		wg.Wait()
		for i, err := range errs {
			assert.NoError(err, "conv-%03d", i)
		}
		resp, err := s.ListConversations(context.Background(), schema.ListConversationRequest{})
		assert.NoError(err)
		assert.Equal(uint(n), resp.Count)
	}},
	{"ConcurrentReadsAndWrites", func(t *testing.T, s schema.ConversationStore) {
		ctx := context.Background()
		s.SetConversation(ctx, testConversation("conv-seed", "user-1"))

		const n = 20
		var wg sync.WaitGroup
		wg.Add(n * 3)
		for i := range n {
			go func() {
				defer wg.Done()
				s.GetConversation(ctx, "conv-seed")
			}()
			go func() {
				defer wg.Done()
				s.ListConversations(ctx, schema.ListConversationRequest{})
			}()
			go func(i int) {
				defer wg.Done()
				s.SetConversation(ctx, testConversation(fmt.Sprintf("conv-%d", i), "user-2"))
			}(i)
		}
		wg.Wait()
	}},
}

// runConversationStoreTests runs every shared behavioural test against a
// store implementation. The factory is called once per subtest so each gets
// a clean, independent store.
func runConversationStoreTests(t *testing.T, factory func() schema.ConversationStore) {
	t.Helper()
	for _, tt := range conversationStoreTests {
		t.Run(tt.Name, func(t *testing.T) {
			tt.Fn(t, factory())
		})
	}
}
