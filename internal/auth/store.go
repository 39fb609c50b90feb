// Package auth owns client-side credential persistence and session state.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"findash/internal/core"
)

// Credentials is the persisted pair of bearer token and cached user profile.
// The two are saved and cleared together; a partial pair is never observable.
type Credentials struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

// Store persists credentials between runs. Implementations must be safe for
// concurrent use and must satisfy api.TokenSource (Token + Clear).
type Store interface {
	Save(Credentials) error
	Load() (Credentials, bool, error)
	Clear() error
	Token() (string, bool)
}

// FileStore keeps credentials in a single JSON file with mode 0600.
// Writes go through a temp file plus rename so a crash mid-write never
// leaves a token without its user or vice versa.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path, creating parent directories.
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create credentials directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(creds Credentials) error {
	if creds.Token == "" {
		return errors.New("refusing to save empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(buf, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("decode credentials: %w", err)
	}
	if creds.Token == "" {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Token implements api.TokenSource.
func (s *FileStore) Token() (string, bool) {
	creds, ok, err := s.Load()
	if err != nil || !ok {
		return "", false
	}
	return creds.Token, true
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(creds Credentials) error {
	if creds.Token == "" {
		return errors.New("refusing to save empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
	return nil
}

func (s *MemoryStore) Load() (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, s.set, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.set = false
	return nil
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", false
	}
	return s.creds.Token, true
}
