// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package server_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/passage-dev/passage/internal/server"
	"github.com/passage-dev/passage/internal/store"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	seq           int
	projects      map[string]*store.Project
	documents     map[string]*store.Document
	chunks        map[string][]*store.Chunk
	conversations map[string]*store.Conversation
	messages      map[string][]*store.Message
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		projects:      make(map[string]*store.Project),
		documents:     make(map[string]*store.Document),
		chunks:        make(map[string][]*store.Chunk),
		conversations: make(map[string]*store.Conversation),
		messages:      make(map[string][]*store.Message),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) CreateProject(_ context.Context, name string) (*store.Project, error) {
	if name == "" {
		return nil, passerr.New(passerr.CodeStoreInvalidInput, "project name must not be empty")
	}
	p := &store.Project{ID: m.nextID("proj"), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memStore) GetProject(_ context.Context, id string) (*store.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, passerr.Errorf(passerr.CodeStoreProjectNotFound, "project %s not found", id)
	}
	return p, nil
}

func (m *memStore) ListProjects(_ context.Context) ([]*store.Project, error) {
	var out []*store.Project
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) DeleteProject(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return passerr.Errorf(passerr.CodeStoreProjectNotFound, "project %s not found", id)
	}
	delete(m.projects, id)
	return nil
}

func (m *memStore) CreateDocument(ctx context.Context, projectID, name, sourcePath string) (*store.Document, error) {
	if _, err := m.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	d := &store.Document{ID: m.nextID("doc"), ProjectID: projectID, Name: name, SourcePath: sourcePath, CreatedAt: time.Now()}
	m.documents[d.ID] = d
	return d, nil
}

func (m *memStore) GetDocument(_ context.Context, id string) (*store.Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, passerr.Errorf(passerr.CodeStoreDocumentNotFound, "document %s not found", id)
	}
	return d, nil
}

func (m *memStore) ListDocuments(_ context.Context, projectID string) ([]*store.Document, error) {
	var out []*store.Document
	for _, d := range m.documents {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) DeleteDocument(_ context.Context, id string) error {
	if _, ok := m.documents[id]; !ok {
		return passerr.Errorf(passerr.CodeStoreDocumentNotFound, "document %s not found", id)
	}
	delete(m.documents, id)
	return nil
}

func (m *memStore) DisplayNames(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if d, ok := m.documents[id]; ok {
			out[id] = d.Name
		}
	}
	return out, nil
}

func (m *memStore) InsertChunk(_ context.Context, c *store.Chunk) (string, error) {
	id := m.nextID("chunk")
	stored := *c
	stored.ID = id
	m.chunks[c.ProjectID] = append(m.chunks[c.ProjectID], &stored)
	return id, nil
}

func (m *memStore) ListChunksByProject(_ context.Context, projectID string) ([]*store.Chunk, error) {
	return m.chunks[projectID], nil
}

func (m *memStore) CreateConversation(ctx context.Context, projectID, title, providerName, model string) (*store.Conversation, error) {
	if _, err := m.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	c := &store.Conversation{
		ID: m.nextID("conv"), ProjectID: projectID, Title: title,
		Provider: providerName, Model: model,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.conversations[c.ID] = c
	return c, nil
}

func (m *memStore) GetConversation(_ context.Context, id string) (*store.Conversation, error) {
	c, ok := m.conversations[id]
	if !ok {
		return nil, passerr.Errorf(passerr.CodeStoreConversationNotFound, "conversation %s not found", id)
	}
	return c, nil
}

func (m *memStore) ListConversations(_ context.Context, projectID string) ([]*store.Conversation, error) {
	var out []*store.Conversation
	for _, c := range m.conversations {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) DeleteConversation(_ context.Context, id string) error {
	if _, ok := m.conversations[id]; !ok {
		return passerr.Errorf(passerr.CodeStoreConversationNotFound, "conversation %s not found", id)
	}
	delete(m.conversations, id)
	delete(m.messages, id)
	return nil
}

func (m *memStore) AppendMessage(ctx context.Context, conversationID, role, content string) (*store.Message, error) {
	if _, err := m.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	msg := &store.Message{ID: m.nextID("msg"), ConversationID: conversationID, Role: role, Content: content, CreatedAt: time.Now()}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	return msg, nil
}

func (m *memStore) ListMessages(_ context.Context, conversationID string) ([]*store.Message, error) {
	return m.messages[conversationID], nil
}

func (m *memStore) Close() error { return nil }

// fakeRetriever records calls and returns canned matches.
type fakeRetriever struct {
	matches     []*store.Match
	ingestCount int
	ingestErr   error
	queryErr    error
	lastDiverse bool
}

func (f *fakeRetriever) Ingest(_ context.Context, _, _, _ string) (int, error) {
	if f.ingestErr != nil {
		return 0, f.ingestErr
	}
	return f.ingestCount, nil
}

func (f *fakeRetriever) Query(_ context.Context, _, _ string, _ int) ([]*store.Match, error) {
	f.lastDiverse = false
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeRetriever) QueryDiverse(_ context.Context, _, _ string, _, _ int) ([]*store.Match, error) {
	f.lastDiverse = true
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

// newTestServer builds a Server over the given fakes.
func newTestServer(t *testing.T, st store.Store, retriever server.Retriever) *server.Server {
	t.Helper()
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, err)

	svc, err := server.NewServices(st, retriever)
	require.NoError(t, err)
	srv.RegisterServices(svc)

	return srv
}
