// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package provider

import (
	"sort"
	"sync"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

// Registry holds the configured providers by name. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its configured name. Re-registering a name
// replaces the previous provider, which is closed.
func (r *Registry) Register(name string, p Provider) error {
	if name == "" {
		return passerr.New(passerr.CodeProviderRequestInvalid, "provider name must not be empty")
	}
	if p == nil {
		return passerr.New(passerr.CodeProviderRequestInvalid, "provider must not be nil", passerr.FieldProvider(name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.providers[name]; ok {
		_ = old.Close()
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, passerr.Errorf(passerr.CodeProviderNotFound, "provider %q is not configured", name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered provider, joining any errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, passerr.Wrapf(err, passerr.CodeProviderUpstreamFailure, "closing provider %s", name))
		}
		delete(r.providers, name)
	}
	if len(errs) > 0 {
		return passerr.Join(errs...)
	}
	return nil
}
