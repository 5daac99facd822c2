// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package retrieval

import (
	"github.com/passage-dev/passage/internal/store"
	"github.com/passage-dev/passage/internal/vector"
)

// rerank greedily selects up to topK matches from a relevance-sorted pool,
// penalizing candidates that resemble what was already picked. A simplified
// maximal-marginal-relevance policy: chunked documents with overlap tend to
// surface near-duplicate neighbors, and plain top-k would return all of them.
func rerank(pool []*store.Match, topK int, penalty float32) []*store.Match {
	if len(pool) == 0 || topK <= 0 {
		return nil
	}

	// The most relevant match is always kept.
	selected := make([]*store.Match, 0, topK)
	selected = append(selected, pool[0])
	remaining := make([]*store.Match, len(pool)-1)
	copy(remaining, pool[1:])

	for len(selected) < topK && len(remaining) > 0 {
		bestIdx := 0
		bestScore := penalized(remaining[0], selected, penalty)
		for i := 1; i < len(remaining); i++ {
			// Strict greater keeps the earlier (more relevant) candidate
			// on ties, so selection is deterministic.
			if s := penalized(remaining[i], selected, penalty); s > bestScore {
				bestIdx, bestScore = i, s
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// penalized is the candidate's relevance minus the penalty scaled by its
// maximum similarity to any already-selected match.
func penalized(candidate *store.Match, selected []*store.Match, penalty float32) float32 {
	maxSim := vector.Cosine(candidate.Chunk.Embedding, selected[0].Chunk.Embedding)
	for _, s := range selected[1:] {
		if sim := vector.Cosine(candidate.Chunk.Embedding, s.Chunk.Embedding); sim > maxSim {
			maxSim = sim
		}
	}
	return candidate.Similarity - penalty*maxSim
}
