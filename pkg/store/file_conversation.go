package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// FileConversationStore is a file-backed implementation of ConversationStore.
// Each conversation is stored as {id}.json in a directory. The backend owns
// conversation identity, so the store is a plain keyed upsert rather than a
// creator of IDs. It is safe for concurrent use.
type FileConversationStore struct {
	mu  sync.RWMutex
	dir string
}

var _ schema.ConversationStore = (*FileConversationStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewFileConversationStore creates a new file-backed conversation store in
// the given directory. The directory is created if it does not exist.
func NewFileConversationStore(dir string) (*FileConversationStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &FileConversationStore{dir: dir}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetConversation retrieves a conversation by ID from disk.
func (f *FileConversationStore) GetConversation(_ context.Context, id string) (*schema.Conversation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.read(id)
}

// SetConversation writes a conversation to disk, replacing any previous
// state stored under the same ID.
func (f *FileConversationStore) SetConversation(_ context.Context, c *schema.Conversation) error {
	if err := validateConversation(c); err != nil {
		return err
	}
	stampConversation(c)

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.write(c)
}

// DeleteConversation removes a conversation file by ID.
func (f *FileConversationStore) DeleteConversation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := jsonPath(f.dir, id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return divyavaani.ErrNotFound.Withf("conversation %q", id)
	}
	if err := os.Remove(path); err != nil {
		return divyavaani.ErrInternalServerError.Withf("remove: %v", err)
	}
	return nil
}

// ListConversations returns conversations from disk, ordered by last
// modified time (most recent first), with pagination support.
func (f *FileConversationStore) ListConversations(_ context.Context, req schema.ListConversationRequest) (*schema.ListConversationResponse, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids, err := readJSONDir(f.dir)
	if err != nil {
		return nil, err
	}

	result := make([]*schema.Conversation, 0, len(ids))
	for _, id := range ids {
		c, err := f.read(id)
		if err != nil {
			continue // skip corrupt files
		}
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

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// write serialises a conversation to its JSON file.
func (f *FileConversationStore) write(c *schema.Conversation) error {
	return writeJSON(jsonPath(f.dir, c.ID), c)
}

// read deserialises a conversation from its JSON file.
func (f *FileConversationStore) read(id string) (*schema.Conversation, error) {
	var c schema.Conversation
	if err := readJSON(jsonPath(f.dir, id), fmt.Sprintf("conversation %q", id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}
