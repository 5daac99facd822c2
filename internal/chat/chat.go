// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package chat orchestrates retrieval-grounded conversations: it searches the
// project corpus for context, streams the provider's answer, and persists the
// exchange.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/passage-dev/passage/internal/provider"
	"github.com/passage-dev/passage/internal/server"
	"github.com/passage-dev/passage/internal/store"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// DefaultTopK is the retrieved context size when the request doesn't set one.
const DefaultTopK = 5

const systemPromptPrefix = "You are a helpful assistant. Use the following context to answer the user's question.\n\nContext:\n"

// Retriever is the search surface the chat service needs.
type Retriever interface {
	Query(ctx context.Context, projectID, text string, topK int) ([]*store.Match, error)
}

// Service implements server.StreamHandler.
type Service struct {
	registry        *provider.Registry
	retriever       Retriever
	store           store.Store
	defaultProvider string
	defaultModel    string
	logger          *slog.Logger
}

var _ server.StreamHandler = (*Service)(nil)

// NewService builds a chat Service. defaultProvider and defaultModel apply
// when a request doesn't name its own.
func NewService(registry *provider.Registry, retriever Retriever, st store.Store, defaultProvider, defaultModel string) *Service {
	return &Service{
		registry:        registry,
		retriever:       retriever,
		store:           st,
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
		logger:          slog.Default(),
	}
}

// sourceRef is the JSON wire shape of a grounding source event.
type sourceRef struct {
	DocumentName string  `json:"document_name"`
	Similarity   float32 `json:"similarity"`
	Content      string  `json:"content"`
}

// HandleStream retrieves context for the message, streams the provider
// response as SSE events, and persists both turns. Always closes events.
func (s *Service) HandleStream(ctx context.Context, req server.ChatStreamRequest, events chan<- server.SSEEvent) {
	defer close(events)

	providerName := req.Provider
	if providerName == "" {
		providerName = s.defaultProvider
	}
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	backend, err := s.registry.Get(providerName)
	if err != nil {
		sendError(events, err)
		return
	}

	matches, err := s.retriever.Query(ctx, req.ProjectID, req.Content, topK)
	if err != nil {
		sendError(events, err)
		return
	}

	// Tell the client what grounds the answer before any tokens arrive.
	for _, m := range matches {
		data, err := json.Marshal(sourceRef{
			DocumentName: m.DocumentName,
			Similarity:   m.Similarity,
			Content:      m.Chunk.Content,
		})
		if err != nil {
			continue
		}
		events <- server.SSEEvent{Event: "source", Data: string(data)}
	}

	conv, history, err := s.resumeConversation(ctx, req, providerName, model)
	if err != nil {
		sendError(events, err)
		return
	}

	messages := append(history, provider.Message{Role: provider.MessageRoleUser, Content: req.Content})

	stream, err := backend.Chat(ctx, provider.ChatRequest{
		Model:        model,
		Messages:     messages,
		SystemPrompt: buildSystemPrompt(matches),
	})
	if err != nil {
		sendError(events, err)
		return
	}

	var answer strings.Builder
	for event := range stream {
		switch event.Type {
		case provider.EventTypeTextDelta:
			answer.WriteString(event.Text)
			data, _ := json.Marshal(map[string]string{"text": event.Text})
			events <- server.SSEEvent{Event: "delta", Data: string(data)}
		case provider.EventTypeUsage:
			if event.Usage != nil {
				data, _ := json.Marshal(event.Usage)
				events <- server.SSEEvent{Event: "usage", Data: string(data)}
			}
		case provider.EventTypeError:
			events <- server.SSEEvent{Event: "error", Data: fmt.Sprintf(`{"error":%q}`, event.Error)}
			return
		case provider.EventTypeDone:
			// Persist only completed exchanges.
			s.persistExchange(ctx, conv, req.Content, answer.String())
			data, _ := json.Marshal(map[string]string{"conversation_id": conv.ID})
			events <- server.SSEEvent{Event: "done", Data: string(data)}
		}
	}
}

// resumeConversation loads an existing conversation and its history, or
// starts a new one titled after the first message.
func (s *Service) resumeConversation(ctx context.Context, req server.ChatStreamRequest, providerName, model string) (*store.Conversation, []provider.Message, error) {
	if req.ConversationID == "" {
		conv, err := s.store.CreateConversation(ctx, req.ProjectID, titleFrom(req.Content), providerName, model)
		if err != nil {
			return nil, nil, err
		}
		return conv, nil, nil
	}

	conv, err := s.store.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv.ProjectID != req.ProjectID {
		return nil, nil, passerr.New(passerr.CodeRetrievalQueryInvalid, "conversation belongs to a different project",
			passerr.FieldProject(req.ProjectID))
	}

	stored, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}

	history := make([]provider.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, provider.Message{
			Role:    provider.MessageRole(m.Role),
			Content: m.Content,
		})
	}

	return conv, history, nil
}

func (s *Service) persistExchange(ctx context.Context, conv *store.Conversation, question, answer string) {
	if _, err := s.store.AppendMessage(ctx, conv.ID, string(provider.MessageRoleUser), question); err != nil {
		s.logger.Warn("failed to persist user message", "conversation_id", conv.ID, "error", err)
		return
	}
	if _, err := s.store.AppendMessage(ctx, conv.ID, string(provider.MessageRoleAssistant), answer); err != nil {
		s.logger.Warn("failed to persist assistant message", "conversation_id", conv.ID, "error", err)
	}
}

// buildSystemPrompt numbers each retrieved chunk as a source block.
func buildSystemPrompt(matches []*store.Match) string {
	if len(matches) == 0 {
		return systemPromptPrefix + "(no relevant context found)"
	}

	blocks := make([]string, 0, len(matches))
	for i, m := range matches {
		blocks = append(blocks, fmt.Sprintf("[Source %d: %s]\n%s", i+1, m.DocumentName, m.Chunk.Content))
	}
	return systemPromptPrefix + strings.Join(blocks, "\n\n")
}

// titleFrom derives a conversation title from the first message.
func titleFrom(content string) string {
	const maxTitle = 60
	title := strings.TrimSpace(content)
	if r := []rune(title); len(r) > maxTitle {
		title = string(r[:maxTitle]) + "…"
	}
	return title
}

func sendError(events chan<- server.SSEEvent, err error) {
	data, _ := json.Marshal(map[string]string{
		"error": err.Error(),
		"code":  string(passerr.CodeOf(err)),
	})
	events <- server.SSEEvent{Event: "error", Data: string(data)}
}
