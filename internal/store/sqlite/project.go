// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/passage-dev/passage/internal/store"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// CreateProject inserts a new project and returns it.
func (s *Store) CreateProject(ctx context.Context, name string) (*store.Project, error) {
	if name == "" {
		return nil, passerr.New(passerr.CodeStoreInvalidInput, "project name must not be empty")
	}

	now := time.Now().UTC()
	project := &store.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const q = `INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, project.ID, project.Name, project.CreatedAt, project.UpdatedAt); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "inserting project %s", name)
	}

	return project, nil
}

// GetProject loads a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*store.Project, error) {
	const q = `SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`

	var p store.Project
	err := s.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passerr.Errorf(passerr.CodeStoreProjectNotFound, "project %s not found", id)
	}
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "loading project %s", id)
	}

	return &p, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]*store.Project, error) {
	const q = `SELECT id, name, created_at, updated_at FROM projects ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "listing projects")
	}
	defer func() { _ = rows.Close() }()

	var projects []*store.Project
	for rows.Next() {
		var p store.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "scanning project row")
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "iterating project rows")
	}

	return projects, nil
}

// DeleteProject removes a project. Documents, chunks, and conversations
// cascade.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "deleting project %s", id)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return passerr.Errorf(passerr.CodeStoreProjectNotFound, "project %s not found", id)
	}
	return nil
}

// touchProject bumps a project's updated_at timestamp.
func (s *Store) touchProject(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}
