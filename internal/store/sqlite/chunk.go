// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package sqlite

import (
	"context"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"

	"github.com/passage-dev/passage/internal/store"
	"github.com/passage-dev/passage/internal/vector"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// InsertChunk persists a single chunk with its embedding and returns the
// new chunk ID. The embedding is stored as a little-endian float32 blob in
// sqlite-vec's serialization format; vector.Decode reads it back.
func (s *Store) InsertChunk(ctx context.Context, c *store.Chunk) (string, error) {
	if c.Content == "" {
		return "", passerr.New(passerr.CodeStoreInvalidInput, "chunk content must not be empty", passerr.FieldDocument(c.DocumentID))
	}
	if len(c.Embedding) == 0 {
		return "", passerr.New(passerr.CodeStoreInvalidInput, "chunk embedding must not be empty", passerr.FieldDocument(c.DocumentID))
	}

	blob, err := sqlite_vec.SerializeFloat32(c.Embedding)
	if err != nil {
		return "", passerr.Wrap(err, passerr.CodeStoreChunkEncodeFailed, "encoding chunk embedding", passerr.FieldDocument(c.DocumentID))
	}

	id := uuid.NewString()
	const q = `INSERT INTO chunks (id, document_id, project_id, content, embedding, ordinal) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, id, c.DocumentID, c.ProjectID, c.Content, blob, c.Ordinal); err != nil {
		return "", passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "inserting chunk %d of document %s", c.Ordinal, c.DocumentID)
	}

	return id, nil
}

// ListChunksByProject loads every chunk in a project with its decoded
// embedding, in document then ordinal order.
func (s *Store) ListChunksByProject(ctx context.Context, projectID string) ([]*store.Chunk, error) {
	const q = `SELECT id, document_id, project_id, content, embedding, ordinal
FROM chunks WHERE project_id = ? ORDER BY document_id, ordinal`

	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "listing chunks for project %s", projectID)
	}
	defer func() { _ = rows.Close() }()

	var chunks []*store.Chunk
	for rows.Next() {
		var (
			c    store.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ProjectID, &c.Content, &blob, &c.Ordinal); err != nil {
			return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "scanning chunk row")
		}

		c.Embedding, err = vector.Decode(blob)
		if err != nil {
			return nil, passerr.Wrap(err, passerr.CodeStoreChunkDecodeFailed, "decoding chunk embedding",
				passerr.Field("chunk_id", c.ID))
		}

		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "iterating chunk rows")
	}

	return chunks, nil
}
