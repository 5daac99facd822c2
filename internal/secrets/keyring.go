// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/zalando/go-keyring"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

// indexKey is the keyring entry holding the JSON list of stored provider
// names. go-keyring cannot enumerate keys, so ListProviders reads this index.
const indexKey = "::provider-index"

// KeyringStore implements Store on the OS keyring via zalando/go-keyring:
// Keychain on macOS, secret-service (D-Bus) on Linux, Credential Manager on
// Windows.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a KeyringStore scoped to the given service name.
// An empty service falls back to DefaultService.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) SetKey(provider, value string) error {
	if provider == "" {
		return passerr.New(passerr.CodeSecretInvalidInput, "provider name must not be empty")
	}
	if value == "" {
		return passerr.New(passerr.CodeSecretInvalidInput, "API key must not be empty")
	}

	if err := keyring.Set(s.service, provider, value); err != nil {
		return passerr.Wrapf(err, passerr.CodeSecretStoreFailure, "storing key for provider %s", provider)
	}

	return s.addToIndex(provider)
}

func (s *KeyringStore) GetKey(provider string) (string, error) {
	if provider == "" {
		return "", passerr.New(passerr.CodeSecretInvalidInput, "provider name must not be empty")
	}

	val, err := keyring.Get(s.service, provider)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", passerr.Errorf(passerr.CodeSecretNotFound, "no stored key for provider %s", provider)
		}
		return "", passerr.Wrapf(err, passerr.CodeSecretStoreFailure, "reading key for provider %s", provider)
	}
	return val, nil
}

func (s *KeyringStore) DeleteKey(provider string) error {
	if provider == "" {
		return passerr.New(passerr.CodeSecretInvalidInput, "provider name must not be empty")
	}

	if err := keyring.Delete(s.service, provider); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return passerr.Errorf(passerr.CodeSecretNotFound, "no stored key for provider %s", provider)
		}
		return passerr.Wrapf(err, passerr.CodeSecretDeleteFailure, "deleting key for provider %s", provider)
	}

	return s.removeFromIndex(provider)
}

func (s *KeyringStore) ListProviders() ([]string, error) {
	return s.loadIndex()
}

func (s *KeyringStore) loadIndex() ([]string, error) {
	raw, err := keyring.Get(s.service, indexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, passerr.Wrapf(err, passerr.CodeSecretListFailure, "loading provider index")
	}

	var providers []string
	if err := json.Unmarshal([]byte(raw), &providers); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeSecretListFailure, "decoding provider index")
	}

	return providers, nil
}

func (s *KeyringStore) saveIndex(providers []string) error {
	if len(providers) == 0 {
		if delErr := keyring.Delete(s.service, indexKey); delErr != nil {
			slog.Debug("failed to clean up empty provider index", "service", s.service, "error", delErr)
		}
		return nil
	}

	data, err := json.Marshal(providers)
	if err != nil {
		return passerr.Wrapf(err, passerr.CodeSecretListFailure, "encoding provider index")
	}

	if err := keyring.Set(s.service, indexKey, string(data)); err != nil {
		return passerr.Wrapf(err, passerr.CodeSecretListFailure, "saving provider index")
	}

	return nil
}

func (s *KeyringStore) addToIndex(provider string) error {
	providers, err := s.loadIndex()
	if err != nil {
		return err
	}

	for _, p := range providers {
		if p == provider {
			return nil
		}
	}

	return s.saveIndex(append(providers, provider))
}

func (s *KeyringStore) removeFromIndex(provider string) error {
	providers, err := s.loadIndex()
	if err != nil {
		return err
	}

	filtered := providers[:0]
	for _, p := range providers {
		if p != provider {
			filtered = append(filtered, p)
		}
	}

	return s.saveIndex(filtered)
}
