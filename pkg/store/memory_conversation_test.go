package store_test

import (
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	store "github.com/mutablelogic/go-divyavaani/pkg/store"
	assert "github.com/stretchr/testify/assert"
)

func Test_memory_conversation_001(t *testing.T) {
	assert := assert.New(t)
	store := store.NewMemoryConversationStore()
	assert.NotNil(store)
}

func Test_memory_conversation_002(t *testing.T) {
	runConversationStoreTests(t, func() schema.ConversationStore {
		return store.NewMemoryConversationStore()
	})
}
