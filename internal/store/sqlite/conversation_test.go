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

func TestConversationStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "conversations")
	project := testProject(t, ctx, s, "docs")

	conv, err := s.CreateConversation(ctx, project.ID, "Setup questions", "openai", "gpt-4o-mini")
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)
	assert.Equal(t, "Setup questions", conv.Title)
	assert.Equal(t, "openai", conv.Provider)

	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, "gpt-4o-mini", got.Model)

	convs, err := s.ListConversations(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	err = s.DeleteConversation(ctx, conv.ID)
	require.NoError(t, err)

	_, err = s.GetConversation(ctx, conv.ID)
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeStoreConversationNotFound))
}

func TestConversationStore_MissingProject(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "conversations-no-project")

	_, err := s.CreateConversation(ctx, "no-such-project", "title", "openai", "gpt-4o-mini")
	require.Error(t, err)
	assert.True(t, passerr.IsNotFound(err))
}

func TestConversationStore_Messages(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "conversations-messages")
	project := testProject(t, ctx, s, "docs")

	conv, err := s.CreateConversation(ctx, project.ID, "Setup", "openai", "gpt-4o-mini")
	require.NoError(t, err)

	userMsg, err := s.AppendMessage(ctx, conv.ID, "user", "How do I configure retries?")
	require.NoError(t, err)
	assert.Equal(t, "user", userMsg.Role)

	_, err = s.AppendMessage(ctx, conv.ID, "assistant", "Set the retries key in config.")
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// Chronological order.
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "How do I configure retries?", msgs[0].Content)
}

func TestConversationStore_AppendToMissing(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "conversations-append-missing")

	_, err := s.AppendMessage(ctx, "no-such-conversation", "user", "hello")
	require.Error(t, err)
	assert.True(t, passerr.IsNotFound(err))
}

func TestConversationStore_DeleteCascadesMessages(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, "conversations-cascade")
	project := testProject(t, ctx, s, "docs")

	conv, err := s.CreateConversation(ctx, project.ID, "Setup", "openai", "gpt-4o-mini")
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conv.ID, "user", "hello")
	require.NoError(t, err)

	err = s.DeleteConversation(ctx, conv.ID)
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
