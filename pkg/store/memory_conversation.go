package store

import (
	"context"
	"sort"
	"sync"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// MemoryConversationStore is an in-memory implementation of
// ConversationStore. Conversations are held by reference, so mutations made
// after SetConversation are visible without a further call. It is safe for
// concurrent use.
type MemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*schema.Conversation
}

var _ schema.ConversationStore = (*MemoryConversationStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMemoryConversationStore creates a new empty in-memory conversation store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		conversations: make(map[string]*schema.Conversation),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetConversation retrieves a conversation by ID.
func (m *MemoryConversationStore) GetConversation(_ context.Context, id string) (*schema.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conversations[id]
	if !ok {
		return nil, divyavaani.ErrNotFound.Withf("conversation %q", id)
	}
	return c, nil
}

// SetConversation stores a conversation, replacing any previous state
// stored under the same ID.
func (m *MemoryConversationStore) SetConversation(_ context.Context, c *schema.Conversation) error {
	if err := validateConversation(c); err != nil {
		return err
	}
	stampConversation(c)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.ID] = c

	return nil
}

// DeleteConversation removes a conversation by ID.
func (m *MemoryConversationStore) DeleteConversation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conversations[id]; !ok {
		return divyavaani.ErrNotFound.Withf("conversation %q", id)
	}
	delete(m.conversations, id)
	return nil
}

// ListConversations returns conversations ordered by last modified time
// (most recent first), with pagination support.
func (m *MemoryConversationStore) ListConversations(_ context.Context, req schema.ListConversationRequest) (*schema.ListConversationResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*schema.Conversation, 0, len(m.conversations))
	for _, c := range m.conversations {
		if !matchUser(c, req.UserID) {
			continue
		}
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Modified.After(result[j].Modified)
	})

	body, total := paginate(result, req.Offset, req.Limit)
	return &schema.ListConversationResponse{
		Count:  total,
		Offset: req.Offset,
		Limit:  req.Limit,
		Body:   body,
	}, nil
}
