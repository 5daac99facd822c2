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

func TestDocumentStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "documents")
	project := testProject(t, ctx, s, "docs")

	doc, err := s.CreateDocument(ctx, project.ID, "guide.md", "/corpus/guide.md")
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	assert.Equal(t, project.ID, doc.ProjectID)
	assert.Equal(t, "guide.md", doc.Name)
	assert.Equal(t, "/corpus/guide.md", doc.SourcePath)

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "guide.md", got.Name)

	docs, err := s.ListDocuments(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	err = s.DeleteDocument(ctx, doc.ID)
	require.NoError(t, err)

	_, err = s.GetDocument(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeStoreDocumentNotFound))
}

func TestDocumentStore_MissingProject(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "documents-no-project")

	_, err := s.CreateDocument(ctx, "no-such-project", "guide.md", "")
	require.Error(t, err)
	assert.True(t, passerr.IsNotFound(err))
}

func TestDocumentStore_DisplayNames(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "documents-names")
	project := testProject(t, ctx, s, "docs")

	a, err := s.CreateDocument(ctx, project.ID, "alpha.md", "")
	require.NoError(t, err)
	b, err := s.CreateDocument(ctx, project.ID, "beta.md", "")
	require.NoError(t, err)

	names, err := s.DisplayNames(ctx, []string{a.ID, b.ID, "no-such-doc"})
	require.NoError(t, err)

	// Missing IDs are simply absent, not an error.
	assert.Len(t, names, 2)
	assert.Equal(t, "alpha.md", names[a.ID])
	assert.Equal(t, "beta.md", names[b.ID])
	_, ok := names["no-such-doc"]
	assert.False(t, ok)
}

func TestDocumentStore_DisplayNamesEmpty(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "documents-names-empty")

	names, err := s.DisplayNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDocumentStore_DeleteCascadesChunks(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "documents-cascade")
	project := testProject(t, ctx, s, "docs")

	doc, err := s.CreateDocument(ctx, project.ID, "guide.md", "")
	require.NoError(t, err)

	_, err = s.InsertChunk(ctx, chunkFixture(project.ID, doc.ID, 0, "first section"))
	require.NoError(t, err)
	_, err = s.InsertChunk(ctx, chunkFixture(project.ID, doc.ID, 1, "second section"))
	require.NoError(t, err)

	err = s.DeleteDocument(ctx, doc.ID)
	require.NoError(t, err)

	chunks, err := s.ListChunksByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
