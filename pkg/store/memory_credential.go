package store

import (
	"context"
	"fmt"
	"sync"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	encrypt "github.com/mutablelogic/go-divyavaani/pkg/encrypt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// MemoryCredentialStore is an in-memory implementation of CredentialStore.
// Credentials are encrypted at rest using AES-256-GCM with a per-entry salt.
// It is safe for concurrent use.
type MemoryCredentialStore struct {
	mu         sync.RWMutex
	passphrase string
	creds      map[string][]byte // keyed by server URL, value is encrypted blob
}

var _ schema.CredentialStore = (*MemoryCredentialStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMemoryCredentialStore creates a new empty in-memory credential store.
// The passphrase is used to encrypt and decrypt credentials.
func NewMemoryCredentialStore(passphrase string) (*MemoryCredentialStore, error) {
	if err := encrypt.ValidatePassphrase(passphrase); err != nil {
		return nil, err
	}
	return &MemoryCredentialStore{
		passphrase: passphrase,
		creds:      make(map[string][]byte),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetCredential retrieves the credential for the given server URL.
func (s *MemoryCredentialStore) GetCredential(_ context.Context, url string) (*schema.AuthCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.creds[url]
	if !ok {
		return nil, divyavaani.ErrNotFound.Withf("credential not found for %q", url)
	}

	var cred schema.AuthCredentials
	if err := encrypt.DecryptJSON(s.passphrase, blob, &cred); err != nil {
		return nil, fmt.Errorf("credential decrypt failed for %q: %w", url, err)
	}
	return &cred, nil
}

// SetCredential stores (or updates) the credential for the given server URL.
func (s *MemoryCredentialStore) SetCredential(_ context.Context, url string, cred schema.AuthCredentials) error {
	blob, err := encrypt.EncryptJSON(s.passphrase, cred)
	if err != nil {
		return fmt.Errorf("credential encrypt failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[url] = blob
	return nil
}

// DeleteCredential removes the credential for the given server URL.
func (s *MemoryCredentialStore) DeleteCredential(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[url]; !ok {
		return divyavaani.ErrNotFound.Withf("credential not found for %q", url)
	}
	delete(s.creds, url)
	return nil
}
