// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/passage-dev/passage/internal/chunk"
	"github.com/passage-dev/passage/internal/config"
	"github.com/passage-dev/passage/internal/embedding"
	"github.com/passage-dev/passage/internal/provider"
	anthropicprov "github.com/passage-dev/passage/internal/provider/anthropic"
	googleprov "github.com/passage-dev/passage/internal/provider/google"
	openaiprov "github.com/passage-dev/passage/internal/provider/openai"
	"github.com/passage-dev/passage/internal/retrieval"
	"github.com/passage-dev/passage/internal/secrets"
	"github.com/passage-dev/passage/internal/store/sqlite"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// app holds all wired subsystems and manages their lifecycle.
type app struct {
	cfg      *config.Config
	store    *sqlite.Store
	registry *provider.Registry

	// pipeline is nil when no embedding-capable provider is configured;
	// retrievalErr then explains why. Commands that only touch the store
	// still work.
	pipeline     *retrieval.Pipeline
	retrievalErr error
}

// secretStoreFactory creates the keyring store. It is a package-level
// variable so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore(secrets.DefaultService)
}

// wireApp creates all subsystems from the resolved configuration.
func wireApp(v *viper.Viper) (*app, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, passerr.Errorf(passerr.CodeCLISetupFailure, "creating data directory: %w", err)
		}
	}

	st, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeCLISetupFailure, "opening corpus database %s", cfg.Storage.Path)
	}

	registry := provider.NewRegistry()
	registerConfiguredProviders(cfg, registry)

	a := &app{cfg: cfg, store: st, registry: registry}

	backend, err := registry.Get(cfg.Retrieval.EmbedProvider)
	if err != nil {
		a.retrievalErr = passerr.Wrapf(err, passerr.CodeCLISetupFailure,
			"embedding provider %q is not configured; set its API key with 'passage secret set'", cfg.Retrieval.EmbedProvider)
		return a, nil
	}

	embedSvc := embedding.NewService(backend, embedding.WithBatchSize(cfg.Retrieval.EmbedBatchSize))
	engine := retrieval.NewEngine(st, st, retrieval.WithDiversityPenalty(cfg.Retrieval.DiversityPenalty))
	a.pipeline = retrieval.NewPipeline(engine, embedSvc, st, retrieval.Options{
		TopKMax:             cfg.Retrieval.TopKMax,
		DiversityPenalty:    cfg.Retrieval.DiversityPenalty,
		CandidateMultiplier: cfg.Retrieval.CandidateMultiplier,
		Chunking: chunk.Config{
			Size:    cfg.Retrieval.ChunkSize,
			Overlap: cfg.Retrieval.ChunkOverlap,
		},
	})

	return a, nil
}

// requirePipeline returns the retrieval pipeline or the setup error that
// prevented building one.
func (a *app) requirePipeline() (*retrieval.Pipeline, error) {
	if a.pipeline == nil {
		return nil, a.retrievalErr
	}
	return a.pipeline, nil
}

func (a *app) Close() {
	if err := a.registry.Close(); err != nil {
		slog.Warn("closing providers", "error", err)
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("closing store", "error", err)
	}
}

// registerConfiguredProviders builds a provider per configured entry. A
// provider whose API key cannot be resolved is skipped with a warning, not
// fatal: the rest of the CLI still works.
func registerConfiguredProviders(cfg *config.Config, registry *provider.Registry) {
	keyring := secretStoreFactory()

	for name, pc := range cfg.Providers {
		apiKey := pc.APIKey
		if apiKey == "" {
			stored, err := keyring.GetKey(name)
			if err != nil {
				slog.Warn("skipping provider without API key", "provider", name, "error", err)
				continue
			}
			apiKey = stored
		}

		provCfg := provider.Config{
			APIKey:     apiKey,
			BaseURL:    pc.Endpoint,
			EmbedModel: pc.EmbedModel,
		}

		var (
			p   provider.Provider
			err error
		)
		switch name {
		case "openai":
			p, err = openaiprov.New(provCfg)
		case "anthropic":
			p, err = anthropicprov.New(provCfg)
		case "google":
			p, err = googleprov.New(provCfg)
		default:
			slog.Warn("unknown provider in config, skipping", "provider", name)
			continue
		}
		if err != nil {
			slog.Warn("failed to build provider, skipping", "provider", name, "error", err)
			continue
		}

		if err := registry.Register(name, p); err != nil {
			slog.Warn("failed to register provider", "provider", name, "error", err)
		}
	}
}
