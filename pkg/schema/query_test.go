package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func TestQueryRequestValid(t *testing.T) {
	assert := assert.New(t)
	assert.True(schema.QueryRequest{Question: "What is dharma?"}.Valid())
	assert.False(schema.QueryRequest{}.Valid())
	assert.False(schema.QueryRequest{Question: "   "}.Valid())
}

func TestQueryRequestMarshal(t *testing.T) {
	assert := assert.New(t)
	data, err := json.Marshal(schema.QueryRequest{
		Question: "What is dharma?",
		UserID:   "guest-1",
		Language: "en",
	})
	assert.NoError(err)
	assert.JSONEq(`{
		"question": "What is dharma?",
		"user_id": "guest-1",
		"preferred_language": "en"
	}`, string(data))
}

func TestSourceLabel(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("Bhagavad Gita 2.47", schema.Source{Title: "Bhagavad Gita", Reference: "2.47"}.Label())
	assert.Equal("Upanishads", schema.Source{Title: "Upanishads"}.Label())
	assert.Equal("1.1", schema.Source{Reference: "1.1"}.Label())
}

func TestMetadataAccessors(t *testing.T) {
	assert := assert.New(t)
	metadata := schema.Metadata{"language": "hi", "category": "devotion", "count": 3.0}
	assert.Equal("hi", metadata.Language())
	assert.Equal("devotion", metadata.Category())
	// Non-string values read as empty strings
	assert.Empty(metadata.GetString("count"))
	assert.Empty(metadata.GetString("missing"))
}

func TestConversationAppend(t *testing.T) {
	assert := assert.New(t)

	conversation := schema.Conversation{ID: "c-1"}
	conversation.Append(schema.Message{Role: schema.RoleUser, Text: "What is karma?"})
	conversation.Append(schema.Message{
		Role:    schema.RoleAssistant,
		Text:    "Karma is the law of cause and effect.",
		Sources: []schema.Source{{Title: "Bhagavad Gita", Reference: "4.17"}},
	})

	assert.Len(conversation.Messages, 2)
	assert.False(conversation.Modified.IsZero())
	assert.False(conversation.Messages[0].Created.IsZero())
	assert.Len(conversation.Sources(), 1)
}

func TestConversationAppendKeepsCreated(t *testing.T) {
	assert := assert.New(t)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conversation := schema.Conversation{}
	conversation.Append(schema.Message{Role: schema.RoleUser, Text: "hello", Created: created})
	assert.Equal(created, conversation.Messages[0].Created)
	assert.Equal(created, conversation.Modified)
}

func TestRatingMarshal(t *testing.T) {
	assert := assert.New(t)

	data, err := json.Marshal(schema.RatingHelpful)
	assert.NoError(err)
	assert.Equal(`"helpful"`, string(data))

	var rating schema.Rating
	assert.NoError(json.Unmarshal([]byte(`"harmful"`), &rating))
	assert.Equal(schema.RatingHarmful, rating)

	assert.Error(json.Unmarshal([]byte(`"excellent"`), &rating))
}

func TestRatingUnmarshalText(t *testing.T) {
	assert := assert.New(t)

	var rating schema.Rating
	assert.NoError(rating.UnmarshalText([]byte("unhelpful")))
	assert.Equal(schema.RatingUnhelpful, rating)
	assert.Error(rating.UnmarshalText([]byte("bad")))
}
