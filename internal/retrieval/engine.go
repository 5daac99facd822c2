// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package retrieval implements brute-force semantic search over a project's
// chunk corpus: exact cosine scoring of every candidate, stable descending
// sort, top-k truncation, and an optional diversity re-rank pass.
package retrieval

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/passage-dev/passage/internal/store"
	"github.com/passage-dev/passage/internal/vector"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// scoreParallelCutoff is the candidate count below which scoring stays on a
// single goroutine; spawning workers for tiny corpora costs more than it saves.
const scoreParallelCutoff = 256

// Engine scores a project's chunks against a query vector. It reads an
// immutable snapshot per call, so concurrent searches need no coordination.
type Engine struct {
	chunks           store.ChunkStore
	documents        store.DocumentStore
	diversityPenalty float32
	logger           *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDiversityPenalty overrides the re-rank penalty weight. Values < 0 are
// ignored.
func WithDiversityPenalty(penalty float32) EngineOption {
	return func(e *Engine) {
		if penalty >= 0 {
			e.diversityPenalty = penalty
		}
	}
}

// NewEngine creates a search engine over the given chunk and document stores.
func NewEngine(chunks store.ChunkStore, documents store.DocumentStore, opts ...EngineOption) *Engine {
	e := &Engine{
		chunks:           chunks,
		documents:        documents,
		diversityPenalty: DefaultDiversityPenalty,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the topK chunks most similar to queryVec within a project,
// highest similarity first. A topK below 1 and an empty project both yield
// an empty result, not an error. Matches whose source document vanished
// between scoring and the display-name join are dropped silently.
func (e *Engine) Search(ctx context.Context, projectID string, queryVec []float32, topK int) ([]*store.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	candidates, err := e.chunks.ListChunksByProject(ctx, projectID)
	if err != nil {
		return nil, passerr.Wrap(err, passerr.CodeRetrievalSearchFailure, "fetching candidate chunks", passerr.FieldProject(projectID))
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	scores := scoreAll(candidates, queryVec)

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// Stable: equal scores keep storage order, so results are deterministic
	// for a fixed corpus snapshot.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK < len(order) {
		order = order[:topK]
	}

	ids := make([]string, 0, len(order))
	for _, idx := range order {
		ids = append(ids, candidates[idx].DocumentID)
	}
	names, err := e.documents.DisplayNames(ctx, ids)
	if err != nil {
		return nil, passerr.Wrap(err, passerr.CodeRetrievalSearchFailure, "resolving document names", passerr.FieldProject(projectID))
	}

	matches := make([]*store.Match, 0, len(order))
	for _, idx := range order {
		c := candidates[idx]
		name, ok := names[c.DocumentID]
		if !ok {
			e.logger.Debug("dropping match for vanished document",
				"project_id", projectID, "document_id", c.DocumentID, "chunk_id", c.ID)
			continue
		}
		matches = append(matches, &store.Match{
			Chunk:        c,
			Similarity:   scores[idx],
			DocumentName: name,
		})
	}

	e.logger.Debug("search complete",
		"project_id", projectID, "candidates", len(candidates), "matches", len(matches))

	return matches, nil
}

// SearchWithRerank widens the candidate pool to topK*candidateMultiplier,
// then greedily re-selects topK matches favoring diversity: each slot goes to
// the candidate with the best relevance minus a penalty proportional to its
// similarity to anything already selected. The single most relevant match is
// always kept first.
func (e *Engine) SearchWithRerank(ctx context.Context, projectID string, queryVec []float32, topK, candidateMultiplier int) ([]*store.Match, error) {
	if candidateMultiplier < 1 {
		candidateMultiplier = DefaultCandidateMultiplier
	}

	pool, err := e.Search(ctx, projectID, queryVec, topK*candidateMultiplier)
	if err != nil {
		return nil, err
	}

	return rerank(pool, topK, e.diversityPenalty), nil
}

// scoreAll computes the similarity of every candidate to the query vector.
// Scoring is pure and each index is written by exactly one goroutine, so the
// parallel path needs no locking.
func scoreAll(candidates []*store.Chunk, queryVec []float32) []float32 {
	scores := make([]float32, len(candidates))

	if len(candidates) < scoreParallelCutoff {
		for i, c := range candidates {
			scores[i] = vector.Cosine(queryVec, c.Embedding)
		}
		return scores
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}
	stride := (len(candidates) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * stride
		hi := lo + stride
		if hi > len(candidates) {
			hi = len(candidates)
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				scores[i] = vector.Cosine(queryVec, candidates[i].Embedding)
			}
		}(lo, hi)
	}
	wg.Wait()

	return scores
}
