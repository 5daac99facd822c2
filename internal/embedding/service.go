// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package embedding turns text segments into embedding vectors, batching
// calls to the configured provider backend so large ingests stay within
// backend payload and rate limits.
package embedding

import (
	"context"
	"log/slog"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

// DefaultBatchSize bounds the number of texts sent to the backend per call.
const DefaultBatchSize = 32

// Embedder is the backend capability the service depends on. Implemented by
// the provider packages.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Service batches embedding requests to a single backend.
type Service struct {
	backend   Embedder
	batchSize int
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBatchSize overrides the per-call batch size. Values < 1 are ignored.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.batchSize = n
		}
	}
}

// NewService creates an embedding Service backed by the given Embedder.
func NewService(backend Embedder, opts ...Option) *Service {
	s := &Service{
		backend:   backend,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed returns one vector per input text, in input order. Inputs larger than
// the batch size are split into consecutive backend calls; any call failing
// aborts the whole operation with no partial results.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if len(texts) <= s.batchSize {
		return s.embedBatch(ctx, texts)
	}

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)

		s.logger.Debug("processed embedding batch",
			slog.String("backend", s.backend.Name()),
			slog.Int("batch", end-start),
			slog.Int("done", len(all)),
			slog.Int("total", len(texts)),
		)
	}

	return all, nil
}

// EmbedOne embeds a single text and returns its vector.
func (s *Service) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *Service) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.backend.Embed(ctx, texts)
	if err != nil {
		return nil, passerr.With(err, passerr.Field("batch_size", len(texts)))
	}
	if len(vectors) == 0 {
		return nil, passerr.New(passerr.CodeProviderEmbedEmptyResult,
			"backend returned no embeddings",
			passerr.FieldProvider(s.backend.Name()))
	}
	if len(vectors) != len(texts) {
		return nil, passerr.Errorf(passerr.CodeProviderEmbedCountMismatch,
			"backend %s returned %d vectors for %d texts", s.backend.Name(), len(vectors), len(texts))
	}
	return vectors, nil
}
