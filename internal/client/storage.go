// Package client implements the portal's client-side session: login
// round trips, locally persisted credentials, and the route guard that
// mirrors server-side authorization for UI purposes. The guard is never
// a substitute for server enforcement.
package client

import (
	"encoding/json"
	"os"
	"sync"
)

// Fixed storage keys. Both must be present and mutually consistent for
// the client to consider itself authenticated.
const (
	TokenKey    = "auth_token"
	IdentityKey = "auth_identity"
)

// Storage persists session values across client restarts.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is an in-process Storage, used in tests and by
// short-lived clients that do not persist sessions.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStorage persists values as a JSON object in a single file,
// standing in for browser local storage.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a store backed by the given file path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	val, ok := values[key]
	return val, ok
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	values[key] = value
	return s.save(values)
}

func (s *FileStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	delete(values, key)
	return s.save(values)
}

func (s *FileStorage) load() map[string]string {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string)
	}
	return values
}

func (s *FileStorage) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
