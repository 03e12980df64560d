package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StoredSession is a persisted login for one username
type StoredSession struct {
	Username  string    `yaml:"username"`
	AccountID string    `yaml:"account_id"`
	Token     string    `yaml:"token"`
	DBPath    string    `yaml:"db_path"`
	CreatedAt time.Time `yaml:"created_at"`
}

// SessionIndex is the YAML document holding every persisted login
type SessionIndex struct {
	Sessions []StoredSession `yaml:"sessions"`
	Version  string          `yaml:"version"`
}

// SessionStore persists logins between runs when --persist is set
type SessionStore struct {
	dir string
}

// NewSessionStore creates a store rooted at dir
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// EnsureDir ensures the store directory exists
func (s *SessionStore) EnsureDir() error {
	return os.MkdirAll(s.dir, 0700)
}

// GetIndexPath returns the path to the sessions YAML file
func (s *SessionStore) GetIndexPath() string {
	return filepath.Join(s.dir, "sessions.yaml")
}

// LoadIndex loads the session index. A missing file yields an empty index.
func (s *SessionStore) LoadIndex() (*SessionIndex, error) {
	data, err := os.ReadFile(s.GetIndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return &SessionIndex{Version: "1"}, nil
	}
	if err != nil {
		return nil, err
	}

	var index SessionIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session index: %w", err)
	}
	return &index, nil
}

// SaveIndex writes the session index
func (s *SessionStore) SaveIndex(index *SessionIndex) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal session index: %w", err)
	}
	return os.WriteFile(s.GetIndexPath(), data, 0600)
}

// Find returns the stored session for username against dbPath
func (s *SessionStore) Find(username, dbPath string) (*StoredSession, error) {
	index, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	for _, entry := range index.Sessions {
		if entry.Username == username && entry.DBPath == dbPath {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

// Save adds or replaces the stored session for the same username and database
func (s *SessionStore) Save(session StoredSession) error {
	index, err := s.LoadIndex()
	if err != nil {
		LogWarn("Session index unreadable, starting a new one: %v", err)
		index = &SessionIndex{Version: "1"}
	}

	replaced := false
	for i, entry := range index.Sessions {
		if entry.Username == session.Username && entry.DBPath == session.DBPath {
			index.Sessions[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		index.Sessions = append(index.Sessions, session)
	}
	return s.SaveIndex(index)
}

// Remove deletes the stored session for username against dbPath
func (s *SessionStore) Remove(username, dbPath string) error {
	index, err := s.LoadIndex()
	if err != nil {
		return err
	}

	kept := index.Sessions[:0]
	for _, entry := range index.Sessions {
		if entry.Username == username && entry.DBPath == dbPath {
			continue
		}
		kept = append(kept, entry)
	}
	index.Sessions = kept
	return s.SaveIndex(index)
}
