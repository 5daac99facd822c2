// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package store

import "time"

// Project is an isolated corpus scope. Retrieval never crosses projects.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is a named source text within a project. Its chunks are deleted
// with it (cascade).
type Document struct {
	ID         string
	ProjectID  string
	Name       string
	SourcePath string
	CreatedAt  time.Time
}

// Chunk is the durable retrieval unit: a text segment, its embedding vector,
// and provenance. Chunks are immutable once written.
type Chunk struct {
	ID         string
	DocumentID string
	ProjectID  string
	Content    string
	Embedding  []float32
	// Ordinal is the chunk's zero-based position within its document.
	Ordinal int
}

// Match pairs a chunk with its similarity score and the display name of its
// source document. Produced per query, never persisted.
type Match struct {
	Chunk        *Chunk
	Similarity   float32
	DocumentName string
}

// Conversation is a chat thread grounded in a project's corpus.
type Conversation struct {
	ID        string
	ProjectID string
	Title     string
	Provider  string
	Model     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single turn in a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           string // "system", "user", "assistant"
	Content        string
	CreatedAt      time.Time
}
