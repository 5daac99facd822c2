// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

func TestProjectStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "projects")

	// Create
	project, err := s.CreateProject(ctx, "docs")
	require.NoError(t, err)
	require.NotEmpty(t, project.ID)
	assert.Equal(t, "docs", project.Name)
	assert.False(t, project.CreatedAt.IsZero())

	// Get
	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, "docs", got.Name)

	// List
	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	// Delete
	err = s.DeleteProject(ctx, project.ID)
	require.NoError(t, err)

	_, err = s.GetProject(ctx, project.ID)
	require.Error(t, err)
	assert.True(t, passerr.IsNotFound(err))
}

func TestProjectStore_EmptyNameRejected(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "projects-empty")

	_, err := s.CreateProject(ctx, "")
	require.Error(t, err)
	assert.True(t, passerr.IsInvalidInput(err))
}

func TestProjectStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "projects-missing")

	_, err := s.GetProject(ctx, "no-such-project")
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeStoreProjectNotFound))
}

func TestProjectStore_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "projects-delete-missing")

	err := s.DeleteProject(ctx, "no-such-project")
	require.Error(t, err)
	assert.True(t, passerr.IsNotFound(err))
}

func TestProjectStore_ListOrdersByRecency(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "projects-order")

	first := testProject(t, ctx, s, "first")
	second := testProject(t, ctx, s, "second")

	// Ingesting into the first project bumps it to the top.
	_, err := s.CreateDocument(ctx, first.ID, "notes.md", "")
	require.NoError(t, err)

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, first.ID, projects[0].ID)
	assert.Equal(t, second.ID, projects[1].ID)
}
