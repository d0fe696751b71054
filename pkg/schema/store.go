package schema

import (
	"context"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ConversationStore is the interface for conversation storage backends
type ConversationStore interface {
	// GetConversation retrieves a conversation by ID
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// SetConversation stores (or updates) a conversation
	SetConversation(ctx context.Context, conversation *Conversation) error

	// DeleteConversation removes a conversation by ID
	DeleteConversation(ctx context.Context, id string) error

	// ListConversations returns stored conversations, most recently
	// modified first
	ListConversations(ctx context.Context, req ListConversationRequest) (*ListConversationResponse, error)
}

// CredentialStore is the interface for credential storage backends
type CredentialStore interface {
	// GetCredential retrieves the credential for the given server URL
	GetCredential(ctx context.Context, url string) (*AuthCredentials, error)

	// SetCredential stores (or updates) the credential for the given
	// server URL
	SetCredential(ctx context.Context, url string, cred AuthCredentials) error

	// DeleteCredential removes the credential for the given server URL
	DeleteCredential(ctx context.Context, url string) error
}
