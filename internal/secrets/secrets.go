// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package secrets stores provider API keys outside of config files.
package secrets

// DefaultService is the keyring service name credentials are stored under.
const DefaultService = "passage"

// Store holds API keys per provider name. Implementations may use OS
// keyrings, encrypted files, or other backends.
type Store interface {
	// SetKey saves the API key for a provider.
	SetKey(provider, value string) error

	// GetKey fetches a provider's API key. Missing keys surface as
	// secret.get.not_found.
	GetKey(provider string) (string, error)

	// DeleteKey removes a provider's API key. Missing keys surface as
	// secret.get.not_found.
	DeleteKey(provider string) error

	// ListProviders returns every provider name with a stored key.
	ListProviders() ([]string, error)
}
