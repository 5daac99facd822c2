// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/passage-dev/passage/internal/chunk"
	"github.com/passage-dev/passage/internal/embedding"
	"github.com/passage-dev/passage/internal/store"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

const (
	// DefaultTopKMax caps how many matches a single query may request.
	DefaultTopKMax = 100
	// DefaultDiversityPenalty weights the re-rank similarity penalty.
	DefaultDiversityPenalty = 0.3
	// DefaultCandidateMultiplier widens the re-rank candidate pool.
	DefaultCandidateMultiplier = 4
	// DefaultMaxDocumentBytes bounds a single ingested document.
	DefaultMaxDocumentBytes = 10 << 20
)

// Options tunes pipeline validation and re-ranking. Zero values fall back
// to the defaults above.
type Options struct {
	TopKMax             int
	DiversityPenalty    float32
	CandidateMultiplier int
	MaxDocumentBytes    int
	Chunking            chunk.Config
}

func (o Options) withDefaults() Options {
	if o.TopKMax <= 0 {
		o.TopKMax = DefaultTopKMax
	}
	if o.DiversityPenalty <= 0 {
		o.DiversityPenalty = DefaultDiversityPenalty
	}
	if o.CandidateMultiplier <= 0 {
		o.CandidateMultiplier = DefaultCandidateMultiplier
	}
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	return o
}

// Pipeline ties chunking, embedding, persistence, and search into the
// ingest/query operations the server and CLI call.
type Pipeline struct {
	engine   *Engine
	embedder *embedding.Service
	chunks   store.ChunkStore
	opts     Options
	logger   *slog.Logger
}

// NewPipeline builds a Pipeline over the given collaborators.
func NewPipeline(engine *Engine, embedder *embedding.Service, chunks store.ChunkStore, opts Options) *Pipeline {
	return &Pipeline{
		engine:   engine,
		embedder: embedder,
		chunks:   chunks,
		opts:     opts.withDefaults(),
		logger:   slog.Default(),
	}
}

// Ingest chunks a document's text, embeds every chunk, and persists them
// under the project. It returns how many chunks were stored. Persistence is
// best-effort per chunk: a failed insert is logged and skipped, not fatal.
// Embedding failure aborts the whole ingest with nothing persisted.
func (p *Pipeline) Ingest(ctx context.Context, projectID, documentID, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, passerr.New(passerr.CodeRetrievalIngestInvalid, "document text must not be empty",
			passerr.FieldProject(projectID), passerr.FieldDocument(documentID))
	}
	if len(text) > p.opts.MaxDocumentBytes {
		return 0, passerr.Errorf(passerr.CodeRetrievalIngestInvalid, "document exceeds %d bytes", p.opts.MaxDocumentBytes)
	}

	segments := chunk.Split(text, p.opts.Chunking)

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}

	stored := 0
	for i, seg := range segments {
		_, err := p.chunks.InsertChunk(ctx, &store.Chunk{
			DocumentID: documentID,
			ProjectID:  projectID,
			Content:    seg.Text,
			Embedding:  vectors[i],
			Ordinal:    seg.Ordinal,
		})
		if err != nil {
			p.logger.Error("failed to persist chunk, skipping",
				"project_id", projectID, "document_id", documentID, "ordinal", seg.Ordinal, "error", err)
			continue
		}
		stored++
	}

	p.logger.Info("document ingested",
		"project_id", projectID, "document_id", documentID, "chunks", stored, "segments", len(segments))

	return stored, nil
}

// Query embeds the query text and returns the topK most similar chunks.
func (p *Pipeline) Query(ctx context.Context, projectID, text string, topK int) ([]*store.Match, error) {
	if err := p.validateQuery(text, topK); err != nil {
		return nil, err
	}

	queryVec, err := p.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}

	return p.engine.Search(ctx, projectID, queryVec, topK)
}

// QueryDiverse is Query with the diversity re-rank pass. A multiplier < 1
// falls back to the configured default.
func (p *Pipeline) QueryDiverse(ctx context.Context, projectID, text string, topK, candidateMultiplier int) ([]*store.Match, error) {
	if err := p.validateQuery(text, topK); err != nil {
		return nil, err
	}
	if candidateMultiplier < 1 {
		candidateMultiplier = p.opts.CandidateMultiplier
	}

	queryVec, err := p.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}

	return p.engine.SearchWithRerank(ctx, projectID, queryVec, topK, candidateMultiplier)
}

func (p *Pipeline) validateQuery(text string, topK int) error {
	if strings.TrimSpace(text) == "" {
		return passerr.New(passerr.CodeRetrievalQueryInvalid, "query text must not be empty")
	}
	if topK < 1 || topK > p.opts.TopKMax {
		return passerr.Errorf(passerr.CodeRetrievalQueryInvalid, "top_k must be between 1 and %d, got %d", p.opts.TopKMax, topK)
	}
	return nil
}
