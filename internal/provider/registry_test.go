// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package provider_test

import (
	"context"
	"testing"

	"github.com/passage-dev/passage/internal/provider"
	passerr "github.com/passage-dev/passage/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a minimal Provider double for registry tests.
type fakeProvider struct {
	name   string
	closed bool
}

func (f *fakeProvider) Name() string                     { return f.name }
func (f *fakeProvider) Available(_ context.Context) bool { return true }

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (f *fakeProvider) Chat(_ context.Context, _ provider.ChatRequest) (<-chan provider.ChatEvent, error) {
	ch := make(chan provider.ChatEvent)
	close(ch)
	return ch, nil
}
func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := provider.NewRegistry()
	fake := &fakeProvider{name: "openai"}

	require.NoError(t, r.Register("openai", fake))

	got, err := r.Get("openai")
	require.NoError(t, err)
	assert.Same(t, fake, got)
}

func TestRegistryGetUnknownProvider(t *testing.T) {
	r := provider.NewRegistry()

	_, err := r.Get("missing")
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeProviderNotFound))
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := provider.NewRegistry()

	assert.Error(t, r.Register("", &fakeProvider{}))
	assert.Error(t, r.Register("x", nil))
}

func TestRegistryReplaceClosesPrevious(t *testing.T) {
	r := provider.NewRegistry()
	old := &fakeProvider{name: "openai"}
	require.NoError(t, r.Register("openai", old))
	require.NoError(t, r.Register("openai", &fakeProvider{name: "openai"}))

	assert.True(t, old.closed)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := provider.NewRegistry()
	require.NoError(t, r.Register("openai", &fakeProvider{name: "openai"}))
	require.NoError(t, r.Register("anthropic", &fakeProvider{name: "anthropic"}))
	require.NoError(t, r.Register("google", &fakeProvider{name: "google"}))

	assert.Equal(t, []string{"anthropic", "google", "openai"}, r.Names())
}

func TestRegistryCloseClosesAll(t *testing.T) {
	r := provider.NewRegistry()
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	require.NoError(t, r.Register("a", a))
	require.NoError(t, r.Register("b", b))

	require.NoError(t, r.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	_, err := r.Get("a")
	assert.Error(t, err)
}
