package store_test

import (
	"context"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	assert "github.com/stretchr/testify/assert"
	oauth2 "golang.org/x/oauth2"
)

// credentialStoreTests defines shared behavioural tests for any
// CredentialStore implementation.
var credentialStoreTests = []struct {
	Name string
	Fn   func(t *testing.T, s schema.CredentialStore)
}{{
	Name: "GetNotFound",
	Fn: func(t *testing.T, s schema.CredentialStore) {
		assert := assert.New(t)
		_, err := s.GetCredential(context.Background(), "https://example.com")
		assert.Error(err)
	},
}, {
	Name: "SetAndGet",
	Fn: func(t *testing.T, s schema.CredentialStore) {
		assert := assert.New(t)
		ctx := context.Background()

		cred := schema.AuthCredentials{
			Token: &oauth2.Token{
				AccessToken:  "access-123",
				RefreshToken: "refresh-456",
				TokenType:    "Bearer",
				Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
			},
			Endpoint: "https://example.com/api/v1",
			User:     &schema.User{ID: "user-7", Email: "devotee@example.com"},
		}

		err := s.SetCredential(ctx, "https://example.com", cred)
		assert.NoError(err)

		got, err := s.GetCredential(ctx, "https://example.com")
		assert.NoError(err)
		assert.Equal("access-123", got.AccessToken)
		assert.Equal("refresh-456", got.RefreshToken)
		assert.Equal("https://example.com/api/v1", got.Endpoint)
		if assert.NotNil(got.User) {
			assert.Equal("user-7", got.User.ID)
		}
		assert.True(got.Valid())
	},
}, {
	Name: "Delete",
	Fn: func(t *testing.T, s schema.CredentialStore) {
		assert := assert.New(t)
		ctx := context.Background()

		cred := schema.AuthCredentials{
			Token:    &oauth2.Token{AccessToken: "token-1"},
			Endpoint: "https://example.com/api/v1",
		}

		assert.NoError(s.SetCredential(ctx, "https://example.com", cred))
		assert.NoError(s.DeleteCredential(ctx, "https://example.com"))

		// Get after delete returns error
		_, err := s.GetCredential(ctx, "https://example.com")
		assert.Error(err)
	},
}, {
	Name: "DeleteNotFound",
	Fn: func(t *testing.T, s schema.CredentialStore) {
		assert := assert.New(t)
		err := s.DeleteCredential(context.Background(), "https://example.com")
		assert.Error(err)
	},
}, {
	Name: "SetOverwrites",
	Fn: func(t *testing.T, s schema.CredentialStore) {
		assert := assert.New(t)
		ctx := context.Background()

		cred1 := schema.AuthCredentials{
			Token:    &oauth2.Token{AccessToken: "old"},
			Endpoint: "https://example.com/api/v1",
			User:     &schema.User{ID: "user-1"},
		}
		cred2 := schema.AuthCredentials{
			Token:    &oauth2.Token{AccessToken: "new"},
			Endpoint: "https://example.com/api/v1",
			User:     &schema.User{ID: "user-2"},
		}

		assert.NoError(s.SetCredential(ctx, "https://example.com", cred1))
		assert.NoError(s.SetCredential(ctx, "https://example.com", cred2))

		got, err := s.GetCredential(ctx, "https://example.com")
		assert.NoError(err)
		assert.Equal("new", got.AccessToken)
		if assert.NotNil(got.User) {
			assert.Equal("user-2", got.User.ID)
		}
	},
}, {
	Name: "MultipleURLs",
	Fn: func(t *testing.T, s schema.CredentialStore) {
		assert := assert.New(t)
		ctx := context.Background()

		cred1 := schema.AuthCredentials{
			Token:    &oauth2.Token{AccessToken: "token-a"},
			Endpoint: "https://a.example.com/api/v1",
		}
		cred2 := schema.AuthCredentials{
			Token:    &oauth2.Token{AccessToken: "token-b"},
			Endpoint: "https://b.example.com/api/v1",
		}

		assert.NoError(s.SetCredential(ctx, "https://a.example.com", cred1))
		assert.NoError(s.SetCredential(ctx, "https://b.example.com", cred2))

		got1, err := s.GetCredential(ctx, "https://a.example.com")
		assert.NoError(err)
		assert.Equal("token-a", got1.AccessToken)

		got2, err := s.GetCredential(ctx, "https://b.example.com")
		assert.NoError(err)
		assert.Equal("token-b", got2.AccessToken)
	},
}}

// runCredentialStoreTests runs every shared behavioural test against a
// credential store implementation. The factory is called once per subtest
// so each gets a clean, independent store.
func runCredentialStoreTests(t *testing.T, factory func() schema.CredentialStore) {
	t.Helper()
	for _, tt := range credentialStoreTests {
		t.Run(tt.Name, func(t *testing.T) {
			tt.Fn(t, factory())
		})
	}
}
