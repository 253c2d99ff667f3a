// Package credentials keeps miner API tokens in the system keyring.
package credentials

import (
	"strings"

	"github.com/99designs/keyring"
	"github.com/pkg/errors"
)

const serviceName = "idlerig"

// Store reads and writes tokens keyed by miner URL
type Store struct {
	ring keyring.Keyring
}

// Open opens the platform keyring
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.SecretServiceBackend, // GNOME Keyring, KWallet
			keyring.KWalletBackend,
			keyring.KeychainBackend,
			keyring.PassBackend,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open keyring")
	}
	return &Store{ring: ring}, nil
}

// NewStore wraps an already opened keyring
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// GetToken returns the token stored for url, or "" if there is none
func (s *Store) GetToken(url string) (string, error) {
	item, err := s.ring.Get(key(url))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to retrieve token")
	}
	return string(item.Data), nil
}

func (s *Store) SetToken(url, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	err := s.ring.Set(keyring.Item{
		Key:         key(url),
		Data:        []byte(token),
		Label:       "idlerig token for " + key(url),
		Description: "XMRig HTTP API access token",
	})
	return errors.Wrap(err, "failed to store token")
}

// DeleteToken removes the token for url. Some backends silently ignore
// missing keys, so existence is checked first.
func (s *Store) DeleteToken(url string) error {
	if _, err := s.ring.Get(key(url)); errors.Is(err, keyring.ErrKeyNotFound) {
		return errors.Errorf("no token stored for '%s'", key(url))
	}
	return errors.Wrap(s.ring.Remove(key(url)), "failed to delete token")
}

func key(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}
