// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package provider defines the backend contract for LLM providers: embedding
// generation for the retrieval pipeline and streaming chat for grounded
// answers. Concrete backends live in subpackages and are selected by
// configuration, never by ambient globals.
package provider

import (
	"context"
)

// Provider is the capability contract a concrete LLM backend implements.
// Embed may be unsupported by a given backend; such providers return an
// error carrying the provider.embeddings.unsupported code.
type Provider interface {
	Name() string
	Available(ctx context.Context) bool

	// Embed converts texts into embedding vectors, one per input, in input
	// order. All vectors from one backend share the same length.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Chat streams a model response. The returned channel is closed when the
	// stream ends; a terminal EventTypeDone or EventTypeError is always sent.
	Chat(ctx context.Context, req ChatRequest) (<-chan ChatEvent, error)

	Close() error
}

// ChatRequest represents a request to the LLM.
type ChatRequest struct {
	Model        string
	Messages     []Message
	SystemPrompt string
	Options      ChatOptions
}

// ChatOptions contains model sampling configuration.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

// Message represents a conversation message.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// ChatEvent is a streaming response event.
type ChatEvent struct {
	Type  EventType
	Text  string
	Usage *Usage
	Error string
}

// EventType defines the type of chat event.
type EventType string

const (
	EventTypeTextDelta EventType = "text_delta"
	EventTypeUsage     EventType = "usage"
	EventTypeDone      EventType = "done"
	EventTypeError     EventType = "error"
)

// Usage tracks token consumption reported by the backend.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Config holds the settings shared by all concrete providers.
type Config struct {
	APIKey string
	// BaseURL overrides the backend endpoint, useful for testing against a
	// mock server. Ignored by backends whose SDK does not support it.
	BaseURL string
	// EmbedModel selects the embedding model; each backend applies its own
	// default when empty.
	EmbedModel string
}
