package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys shared by the client session and the local data gateway.
const (
	KeyAuthToken      = "auth_token"
	KeyCurrentUser    = "current_user"
	KeyCurrentFanclub = "current_fanclub"
	KeyFanclubs       = "mock_fanclubs_db"
	KeyUsers          = "mock_users_db"
	KeyPosts          = "mock_posts_db"
	KeyChats          = "mock_chats_db"
	KeyMemberships    = "mock_memberships_db"
	KeyLikes          = "mock_likes_db"
)

// ChatKey is the per fan club chat key used by the local chat cache.
func ChatKey(fanclubID string) string {
	return "fanclub_chat_" + fanclubID
}

// Store is a string key/value map persisted as a single JSON document.
// An empty path keeps everything in memory.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Open loads the file at path, treating a missing file as empty.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]string{}}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// NewMemory returns a store that is never written to disk.
func NewMemory() *Store {
	s, _ := Open("")
	return s
}

// Get returns the raw value and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and flushes to disk.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

// Remove deletes key and flushes to disk.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// Decode unmarshals the JSON value under key into v.
// It reports false without error when the key is absent.
func (s *Store) Decode(key string, v any) (bool, error) {
	raw, ok := s.Get(key)
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Encode marshals v to JSON and stores it under key.
func (s *Store) Encode(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
