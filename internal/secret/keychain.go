package secret

import (
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "storefront-session"

// KeychainStore implements SecretStore with the macOS `security` CLI.
// Values are base64 encoded since session blobs are JSON.
type KeychainStore struct {
	service string
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService}
}

func (k *KeychainStore) Set(key string, value []byte) error {
	cmd := exec.Command("security", "add-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", base64.StdEncoding.EncodeToString(value),
		"-U", // update if exists
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("keychain set %s: %s: %w", key, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get treats any lookup failure as "not found"; exit code 44 is the usual one.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := exec.Command("security", "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w",
	).Output()
	if err != nil {
		return nil, nil
	}
	value, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return value, nil
}

func (k *KeychainStore) Delete(key string) error {
	exec.Command("security", "delete-generic-password", "-a", key, "-s", k.service).Run()
	return nil
}
