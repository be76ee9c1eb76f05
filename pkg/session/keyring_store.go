package session

import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "instaquest"
	keyringKey     = "instagram_token_info"
)

// KeyringStore keeps TokenInfo in the OS keyring instead of a plain
// file.
type KeyringStore struct{}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Get() (*TokenInfo, error) {
	data, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var info TokenInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, err
	}

	return &info, nil
}

func (s *KeyringStore) Set(info *TokenInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return keyring.Set(keyringService, keyringKey, string(data))
}

func (s *KeyringStore) Clear() error {
	err := keyring.Delete(keyringService, keyringKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
