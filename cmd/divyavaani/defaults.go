package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Defaults is a persistent key-value store backed by a JSON file on disk.
// It carries state between invocations, such as the conversation being
// continued and the guest identity assigned on first use.
type Defaults struct {
	mu   sync.RWMutex
	path string
	data map[string]any
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// The conversation appended to when no conversation flag is given
	defaultConversation = "conversation"

	// The preferred language for questions and answers
	defaultLanguage = "language"

	// The user identity, assigned on first use for guests
	defaultUser = "user"

	// The most recent query, used to attach feedback
	defaultQuery = "query"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewDefaults creates a Defaults store at the given file path.
// If the file exists, its contents are loaded; otherwise the store starts empty.
func NewDefaults(path string) (*Defaults, error) {
	defaults := &Defaults{
		path: path,
		data: make(map[string]any),
	}

	// Load existing file (ignore if it doesn't exist)
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&defaults.data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return defaults, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Get retrieves a value by key. Returns nil if the key does not exist.
func (defaults *Defaults) Get(key string) any {
	defaults.mu.RLock()
	defer defaults.mu.RUnlock()
	return defaults.data[key]
}

// GetString retrieves a string value by key. Returns empty string if the key
// does not exist or the value is not a string.
func (defaults *Defaults) GetString(key string) string {
	value, _ := defaults.Get(key).(string)
	return value
}

// Set stores a value by key and persists the store to disk.
// Pass nil to remove a key.
func (defaults *Defaults) Set(key string, value any) error {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()

	if value == nil {
		delete(defaults.data, key)
	} else {
		defaults.data[key] = value
	}
	return defaults.save()
}

// Keys returns all keys in the store, sorted.
func (defaults *Defaults) Keys() []string {
	defaults.mu.RLock()
	defer defaults.mu.RUnlock()
	keys := make([]string, 0, len(defaults.data))
	for key := range defaults.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// save writes the store to disk as indented JSON, creating parent directories
// as needed.
func (defaults *Defaults) save() error {
	if err := os.MkdirAll(filepath.Dir(defaults.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(defaults.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaults.path, data, 0600)
}
