// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package store defines the persistence contracts for projects, documents,
// chunks, and conversations. The retrieval engine depends only on the narrow
// read interfaces here; the sqlite subpackage implements the full Store.
package store

import "context"

// ProjectStore manages corpus projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, name string) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// DocumentStore manages documents and their display names.
type DocumentStore interface {
	CreateDocument(ctx context.Context, projectID, name, sourcePath string) (*Document, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, projectID string) ([]*Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// DisplayNames resolves document IDs to display names. IDs with no
	// surviving document are absent from the result, not an error.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// ChunkStore manages the durable retrieval units. Chunks are append-only;
// there is no update operation.
type ChunkStore interface {
	InsertChunk(ctx context.Context, chunk *Chunk) (string, error)
	ListChunksByProject(ctx context.Context, projectID string) ([]*Chunk, error)
}

// ConversationStore manages chat threads and their messages.
type ConversationStore interface {
	CreateConversation(ctx context.Context, projectID, title, providerName, model string) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, projectID string) ([]*Conversation, error)
	DeleteConversation(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, conversationID, role, content string) (*Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
}

// Store is the full persistence surface.
type Store interface {
	ProjectStore
	DocumentStore
	ChunkStore
	ConversationStore
	Close() error
}
