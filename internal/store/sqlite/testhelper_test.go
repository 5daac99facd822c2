// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/passage-dev/passage/internal/store"
	"github.com/passage-dev/passage/internal/store/sqlite"
)

// testDir creates a temp directory for a test and returns it.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "passage-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}

// testStore opens a fresh store and closes it at test end.
func testStore(t *testing.T, name string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(testDBPath(t, name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// testProject creates a project for tests that need one.
func testProject(t *testing.T, ctx context.Context, s *sqlite.Store, name string) *store.Project {
	t.Helper()
	project, err := s.CreateProject(ctx, name)
	require.NoError(t, err)
	return project
}
