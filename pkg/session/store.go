package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// TokenInfo is the client-local session record: created on exchange,
// read on startup, rewritten by refresh, removed on disconnect.
type TokenInfo struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
}

// TokenStore is the storage port the orchestrator reads and writes
// TokenInfo through. Get returns (nil, nil) when nothing is stored.
type TokenStore interface {
	Get() (*TokenInfo, error)
	Set(info *TokenInfo) error
	Clear() error
}

// FileStore persists TokenInfo as a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath places the token file under the user config dir.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "instaquest", "token.json"), nil
}

func (s *FileStore) Get() (*TokenInfo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var info TokenInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

func (s *FileStore) Set(info *TokenInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
