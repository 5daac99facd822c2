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

// CreateConversation starts a new conversation in a project.
func (s *Store) CreateConversation(ctx context.Context, projectID, title, provider, model string) (*store.Conversation, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conv := &store.Conversation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Provider:  provider,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const q = `INSERT INTO conversations (id, project_id, title, provider, model, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, conv.ID, conv.ProjectID, conv.Title, conv.Provider, conv.Model, conv.CreatedAt, conv.UpdatedAt); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "inserting conversation in project %s", projectID)
	}

	return conv, nil
}

// GetConversation loads a conversation by ID.
func (s *Store) GetConversation(ctx context.Context, id string) (*store.Conversation, error) {
	const q = `SELECT id, project_id, title, provider, model, created_at, updated_at
FROM conversations WHERE id = ?`

	var c store.Conversation
	err := s.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.ProjectID, &c.Title, &c.Provider, &c.Model, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passerr.Errorf(passerr.CodeStoreConversationNotFound, "conversation %s not found", id)
	}
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "loading conversation %s", id)
	}

	return &c, nil
}

// ListConversations returns a project's conversations, most recently
// active first.
func (s *Store) ListConversations(ctx context.Context, projectID string) ([]*store.Conversation, error) {
	const q = `SELECT id, project_id, title, provider, model, created_at, updated_at
FROM conversations WHERE project_id = ? ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "listing conversations for project %s", projectID)
	}
	defer func() { _ = rows.Close() }()

	var convs []*store.Conversation
	for rows.Next() {
		var c store.Conversation
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Provider, &c.Model, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "scanning conversation row")
		}
		convs = append(convs, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "iterating conversation rows")
	}

	return convs, nil
}

// DeleteConversation removes a conversation. Its messages cascade.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "deleting conversation %s", id)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return passerr.Errorf(passerr.CodeStoreConversationNotFound, "conversation %s not found", id)
	}
	return nil
}

// AppendMessage adds a message to a conversation and bumps its
// updated_at timestamp.
func (s *Store) AppendMessage(ctx context.Context, conversationID, role, content string) (*store.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	msg := &store.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	const q = `INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.CreatedAt); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "appending message to conversation %s", conversationID)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, msg.CreatedAt, conversationID); err != nil {
		s.logger.Warn("failed to touch conversation after append",
			"conversation_id", conversationID, "error", err)
	}

	return msg, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*store.Message, error) {
	const q = `SELECT id, conversation_id, role, content, created_at
FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, q, conversationID)
	if err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "listing messages for conversation %s", conversationID)
	}
	defer func() { _ = rows.Close() }()

	var msgs []*store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "scanning message row")
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, passerr.Wrapf(err, passerr.CodeStoreDatabaseFailure, "iterating message rows")
	}

	return msgs, nil
}
