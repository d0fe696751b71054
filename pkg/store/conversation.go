package store

import (
	"path/filepath"
	"time"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS - CONVERSATION UTILITIES

// validateConversation checks that a conversation is storable. The ID is
// assigned by the backend and is opaque to the client, but it must be
// non-empty and usable as a filename.
func validateConversation(c *schema.Conversation) error {
	if c == nil {
		return divyavaani.ErrBadParameter.With("conversation is required")
	}
	if c.ID == "" {
		return divyavaani.ErrBadParameter.With("conversation id is required")
	}
	if c.ID != filepath.Base(c.ID) {
		return divyavaani.ErrBadParameter.Withf("invalid conversation id: %q", c.ID)
	}
	return nil
}

// stampConversation fills in zero timestamps before a conversation is
// persisted. Created defaults to now and Modified to Created, so that
// listing order is stable for conversations that never carried server
// timestamps.
func stampConversation(c *schema.Conversation) {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	if c.Modified.IsZero() {
		c.Modified = c.Created
	}
}

// matchUser returns true if the conversation belongs to the given user.
// An empty filter matches everything.
func matchUser(c *schema.Conversation, userID string) bool {
	return userID == "" || c.UserID == userID
}

// paginate returns a slice of items bounded by offset and limit, along with the
// total count of items before pagination.
func paginate[T any](items []T, offset uint, limit *uint) ([]T, uint) {
	total := uint(len(items))
	start := min(offset, total)
	end := start + types.Value(limit)
	if limit == nil || end > total {
		end = total
	}
	return items[start:end], total
}
