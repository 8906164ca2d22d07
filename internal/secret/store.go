// Package secret keeps the auth session out of the cart storage namespace.
package secret

import (
	"context"
	"runtime"
	"time"

	"storefront/internal/domain"
)

// SecretStore holds small sensitive blobs such as the refresh token.
type SecretStore interface {
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Get returns the value for key, or nil and no error when absent.
	Get(key string) ([]byte, error)

	Delete(key string) error
}

const (
	kvPrefix  = "secret:"
	kvTimeout = 5 * time.Second
)

// KVStore keeps secrets in the configured durable KV under a "secret:" prefix.
type KVStore struct {
	kv domain.KV
}

func NewKVStore(kv domain.KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()
	return s.kv.Set(ctx, kvPrefix+key, value)
}

func (s *KVStore) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()
	data, found, err := s.kv.Get(ctx, kvPrefix+key)
	if err != nil || !found {
		return nil, err
	}
	return data, nil
}

func (s *KVStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()
	return s.kv.Delete(ctx, kvPrefix+key)
}

// Default uses the macOS Keychain when available and kv everywhere else.
func Default(kv domain.KV) SecretStore {
	if runtime.GOOS == "darwin" {
		return NewKeychainStore()
	}
	return NewKVStore(kv)
}
