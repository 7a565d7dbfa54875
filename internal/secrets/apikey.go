package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "prospect-engine"

	DefaultAccount = "api-key"
)

var ErrNotFound = errors.New("api key not found in keychain")

func GetAPIKey(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		account = DefaultAccount
	}
	key, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", ErrNotFound
	}
	return strings.TrimSpace(key), nil
}

func SetAPIKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		account = DefaultAccount
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, account, strings.TrimSpace(key))
}

func DeleteAPIKey(account string) error {
	if strings.TrimSpace(account) == "" {
		account = DefaultAccount
	}
	return keyring.Delete(KeyringService, account)
}

// ResolveAPIKey returns configured when set, otherwise the keychain entry.
func ResolveAPIKey(configured, account string) (string, error) {
	if k := strings.TrimSpace(configured); k != "" {
		return k, nil
	}
	return GetAPIKey(account)
}
