// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/passage-dev/passage/internal/store"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// CreateDocument inserts a new document under a project and returns it.
// The project must exist.
func (s *Store) CreateDocument(ctx context.Context, projectID, name, sourcePath string) (*store.Document, error) {
	if name == "" {
		return nil, passerr.New(passerr.CodeStoreInvalidInput, "document name must not be empty", passerr.FieldProject(projectID))
	}

	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	doc := &store.Document{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Name:       name,
		SourcePath: sourcePath,
		CreatedAt:  time.Now().UTC(),
	}

	const q = `INSERT INTO documents (id, project_id, name, source_path, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, doc.ID, doc.ProjectID, doc.Name, doc.SourcePath, doc.CreatedAt); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "inserting document %s", name)
	}

	if err := s.touchProject(ctx, projectID); err != nil {
		s.logger.Warn("failed to touch project after document insert",
			"project_id", projectID, "error", err)
	}

	return doc, nil
}

// GetDocument loads a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	const q = `SELECT id, project_id, name, source_path, created_at FROM documents WHERE id = ?`

	var d store.Document
	err := s.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.ProjectID, &d.Name, &d.SourcePath, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passerr.Errorf(passerr.CodeStoreDocumentNotFound, "document %s not found", id)
	}
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "loading document %s", id)
	}

	return &d, nil
}

// ListDocuments returns a project's documents, newest first.
func (s *Store) ListDocuments(ctx context.Context, projectID string) ([]*store.Document, error) {
	const q = `SELECT id, project_id, name, source_path, created_at
FROM documents WHERE project_id = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "listing documents for project %s", projectID)
	}
	defer func() { _ = rows.Close() }()

	var docs []*store.Document
	for rows.Next() {
		var d store.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.SourcePath, &d.CreatedAt); err != nil {
			return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "scanning document row")
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "iterating document rows")
	}

	return docs, nil
}

// DeleteDocument removes a document. Its chunks cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "deleting document %s", id)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return passerr.Errorf(passerr.CodeStoreDocumentNotFound, "document %s not found", id)
	}
	return nil
}

// DisplayNames resolves document IDs to display names in a single query.
// IDs with no surviving document are simply absent from the result.
func (s *Store) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM documents WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "resolving %d document names", len(ids))
	}
	defer func() { _ = rows.Close() }()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "scanning document name row")
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "iterating document name rows")
	}

	return names, nil
}
