// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package server

import (
	"context"

	"github.com/passage-dev/passage/internal/store"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// Retriever is the pipeline surface the query and document handlers need.
// Implemented by retrieval.Pipeline; mocked in tests.
type Retriever interface {
	Ingest(ctx context.Context, projectID, documentID, text string) (int, error)
	Query(ctx context.Context, projectID, text string, topK int) ([]*store.Match, error)
	QueryDiverse(ctx context.Context, projectID, text string, topK, candidateMultiplier int) ([]*store.Match, error)
}

// Services holds dependencies injected into route handlers.
type Services struct {
	store     store.Store
	retriever Retriever
}

// NewServices creates a Services instance, rejecting nil dependencies.
func NewServices(st store.Store, retriever Retriever) (*Services, error) {
	if st == nil {
		return nil, passerr.New(passerr.CodeServerStartFailure, "store is required")
	}
	if retriever == nil {
		return nil, passerr.New(passerr.CodeServerStartFailure, "retriever is required")
	}
	return &Services{store: st, retriever: retriever}, nil
}

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}
