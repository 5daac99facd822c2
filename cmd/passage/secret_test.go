// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passage-dev/passage/internal/secrets"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// mockSecretStore is an in-memory secrets.Store for testing.
type mockSecretStore struct {
	keys map[string]string
}

func newMockSecretStore(providers ...string) *mockSecretStore {
	m := &mockSecretStore{keys: make(map[string]string)}
	for _, p := range providers {
		m.keys[p] = "redacted"
	}
	return m
}

func (m *mockSecretStore) SetKey(provider, value string) error {
	m.keys[provider] = value
	return nil
}

func (m *mockSecretStore) GetKey(provider string) (string, error) {
	v, ok := m.keys[provider]
	if !ok {
		return "", passerr.Errorf(passerr.CodeSecretNotFound, "not found")
	}
	return v, nil
}

func (m *mockSecretStore) DeleteKey(provider string) error {
	if _, ok := m.keys[provider]; !ok {
		return passerr.Errorf(passerr.CodeSecretNotFound, "not found")
	}
	delete(m.keys, provider)
	return nil
}

func (m *mockSecretStore) ListProviders() ([]string, error) {
	providers := make([]string, 0, len(m.keys))
	for p := range m.keys {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers, nil
}

// withMockSecrets swaps the keyring factory for the duration of one test.
func withMockSecrets(t *testing.T, m *mockSecretStore) {
	t.Helper()
	old := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return m }
	t.Cleanup(func() { secretStoreFactory = old })
}

func TestSecretSet(t *testing.T) {
	m := newMockSecretStore()
	withMockSecrets(t, m)

	out, err := runCommand(t, "secret", "set", "openai", "sk-test")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored API key for provider: openai")
	assert.Equal(t, "sk-test", m.keys["openai"])
}

func TestSecretList(t *testing.T) {
	tests := []struct {
		name      string
		providers []string
		want      []string
		wantMsg   string
	}{
		{name: "empty", wantMsg: "No API keys stored.\n"},
		{name: "single", providers: []string{"openai"}, want: []string{"openai"}},
		{name: "multiple", providers: []string{"openai", "anthropic"}, want: []string{"anthropic", "openai"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withMockSecrets(t, newMockSecretStore(tt.providers...))

			out, err := runCommand(t, "secret", "list")
			require.NoError(t, err)

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, out)
				return
			}
			got := strings.Fields(out)
			sort.Strings(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSecretDelete(t *testing.T) {
	m := newMockSecretStore("openai")
	withMockSecrets(t, m)

	out, err := runCommand(t, "secret", "delete", "openai")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted API key for provider: openai")
	assert.Empty(t, m.keys)
}

func TestSecretDelete_NotFound(t *testing.T) {
	withMockSecrets(t, newMockSecretStore())

	_, err := runCommand(t, "secret", "delete", "openai")
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeSecretNotFound))
}
