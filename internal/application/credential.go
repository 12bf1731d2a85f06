package application

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrNoCredential = errors.New("no credential configured")

// CredentialStore persists the single credential slot.
type CredentialStore interface {
	Load() (string, error)
	Save(credential string) error
}

// MemoryCredentialStore keeps the credential for the process lifetime only.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	value string
}

func (m *MemoryCredentialStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *MemoryCredentialStore) Save(credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = credential
	return nil
}

// Credentials is the process-wide API key, read from the store once at startup.
type Credentials struct {
	mu    sync.RWMutex
	key   string
	store CredentialStore
}

// LoadCredentials reads the stored credential. seed is used when the store is empty
// (for example a key provided through the config file); it is not persisted.
func LoadCredentials(store CredentialStore, seed string) (*Credentials, error) {
	if store == nil {
		store = &MemoryCredentialStore{}
	}
	key, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if key == "" {
		key = strings.TrimSpace(seed)
	}
	return &Credentials{key: key, store: store}, nil
}

func (c *Credentials) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

func (c *Credentials) Configured() bool {
	return c.APIKey() != ""
}

// Set replaces and persists the credential. Blank input is ignored.
func (c *Credentials) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := c.store.Save(key); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
	return nil
}
