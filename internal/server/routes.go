// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/passage-dev/passage/internal/store"
)

func (s *Server) registerRoutes() {
	// Project endpoints
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/api/v1/projects",
		Summary:       "Create a project",
		Tags:          []string{"projects"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects",
		Summary:     "List projects",
		Tags:        []string{"projects"},
	}, s.handleListProjects)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Get project details",
		Tags:        []string{"projects"},
	}, s.handleGetProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Delete a project and its documents",
		Tags:        []string{"projects"},
	}, s.handleDeleteProject)

	// Document endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "list-documents",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects/{id}/documents",
		Summary:     "List documents in a project",
		Tags:        []string{"documents"},
	}, s.handleListDocuments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "ingest-document",
		Method:        http.MethodPost,
		Path:          "/api/v1/projects/{id}/documents",
		Summary:       "Ingest a document",
		Description:   "Creates the document, chunks and embeds its text, and indexes the chunks for retrieval.",
		Tags:          []string{"documents"},
		DefaultStatus: http.StatusCreated,
	}, s.handleIngestDocument)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-document",
		Method:      http.MethodDelete,
		Path:        "/api/v1/documents/{id}",
		Summary:     "Delete a document and its chunks",
		Tags:        []string{"documents"},
	}, s.handleDeleteDocument)

	// Query endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "query-project",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects/{id}/query",
		Summary:     "Semantic search over a project",
		Description: "Embeds the query text and returns the most similar chunks. Set diverse to apply maximal-marginal-relevance re-ranking.",
		Tags:        []string{"query"},
	}, s.handleQuery)

	// Conversation endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "list-conversations",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects/{id}/conversations",
		Summary:     "List conversations in a project",
		Tags:        []string{"chat"},
	}, s.handleListConversations)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-messages",
		Method:      http.MethodGet,
		Path:        "/api/v1/conversations/{id}/messages",
		Summary:     "List messages in a conversation",
		Tags:        []string{"chat"},
	}, s.handleListMessages)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-conversation",
		Method:      http.MethodDelete,
		Path:        "/api/v1/conversations/{id}",
		Summary:     "Delete a conversation",
		Tags:        []string{"chat"},
	}, s.handleDeleteConversation)
}

// --- Wire types ---

// ProjectSummary is the API shape of a project.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary is the API shape of a document.
type DocumentSummary struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MatchResult is the API shape of a retrieval match.
type MatchResult struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Content      string  `json:"content"`
	Similarity   float32 `json:"similarity"`
	Ordinal      int     `json:"ordinal"`
}

// ConversationSummary is the API shape of a conversation.
type ConversationSummary struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageSummary is the API shape of a chat message.
type MessageSummary struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func projectSummary(p *store.Project) ProjectSummary {
	return ProjectSummary{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func documentSummary(d *store.Document) DocumentSummary {
	return DocumentSummary{ID: d.ID, ProjectID: d.ProjectID, Name: d.Name, SourcePath: d.SourcePath, CreatedAt: d.CreatedAt}
}

func matchResults(matches []*store.Match) []MatchResult {
	out := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchResult{
			ChunkID:      m.Chunk.ID,
			DocumentID:   m.Chunk.DocumentID,
			DocumentName: m.DocumentName,
			Content:      m.Chunk.Content,
			Similarity:   m.Similarity,
			Ordinal:      m.Chunk.Ordinal,
		})
	}
	return out
}

// --- Request/Response types ---

type createProjectInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" doc:"Project name"`
	}
}
type createProjectOutput struct {
	Body ProjectSummary
}

type listProjectsOutput struct {
	Body struct {
		Projects []ProjectSummary `json:"projects"`
	}
}

type projectIDInput struct {
	ID string `path:"id"`
}
type getProjectOutput struct {
	Body ProjectSummary
}

type listDocumentsOutput struct {
	Body struct {
		Documents []DocumentSummary `json:"documents"`
	}
}

type ingestDocumentInput struct {
	ID   string `path:"id"`
	Body struct {
		Name       string `json:"name" minLength:"1" doc:"Document display name"`
		SourcePath string `json:"source_path,omitempty" doc:"Origin path, informational"`
		Text       string `json:"text" minLength:"1" doc:"Full document text"`
	}
}
type ingestDocumentOutput struct {
	Body struct {
		Document DocumentSummary `json:"document"`
		Chunks   int             `json:"chunks" doc:"Number of chunks indexed"`
	}
}

type documentIDInput struct {
	ID string `path:"id"`
}

type queryInput struct {
	ID   string `path:"id"`
	Body struct {
		Text                string `json:"text" minLength:"1" doc:"Query text"`
		TopK                int    `json:"top_k,omitempty" doc:"Result count, defaults to 5"`
		Diverse             bool   `json:"diverse,omitempty" doc:"Apply diversity re-ranking"`
		CandidateMultiplier int    `json:"candidate_multiplier,omitempty" doc:"Re-rank pool widening factor"`
	}
}
type queryOutput struct {
	Body struct {
		Matches []MatchResult `json:"matches"`
	}
}

type listConversationsOutput struct {
	Body struct {
		Conversations []ConversationSummary `json:"conversations"`
	}
}

type conversationIDInput struct {
	ID string `path:"id"`
}
type listMessagesOutput struct {
	Body struct {
		Messages []MessageSummary `json:"messages"`
	}
}

type deleteOutput struct {
	Body struct {
		Status string `json:"status" example:"deleted"`
	}
}

// --- Handlers ---

func (s *Server) handleCreateProject(ctx context.Context, input *createProjectInput) (*createProjectOutput, error) {
	project, err := s.services.store.CreateProject(ctx, input.Body.Name)
	if err != nil {
		return nil, humaError(err)
	}
	return &createProjectOutput{Body: projectSummary(project)}, nil
}

func (s *Server) handleListProjects(ctx context.Context, _ *struct{}) (*listProjectsOutput, error) {
	projects, err := s.services.store.ListProjects(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	out := &listProjectsOutput{}
	out.Body.Projects = make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out.Body.Projects = append(out.Body.Projects, projectSummary(p))
	}
	return out, nil
}

func (s *Server) handleGetProject(ctx context.Context, input *projectIDInput) (*getProjectOutput, error) {
	project, err := s.services.store.GetProject(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	return &getProjectOutput{Body: projectSummary(project)}, nil
}

func (s *Server) handleDeleteProject(ctx context.Context, input *projectIDInput) (*deleteOutput, error) {
	if err := s.services.store.DeleteProject(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	out := &deleteOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleListDocuments(ctx context.Context, input *projectIDInput) (*listDocumentsOutput, error) {
	if _, err := s.services.store.GetProject(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	docs, err := s.services.store.ListDocuments(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	out := &listDocumentsOutput{}
	out.Body.Documents = make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out.Body.Documents = append(out.Body.Documents, documentSummary(d))
	}
	return out, nil
}

func (s *Server) handleIngestDocument(ctx context.Context, input *ingestDocumentInput) (*ingestDocumentOutput, error) {
	doc, err := s.services.store.CreateDocument(ctx, input.ID, input.Body.Name, input.Body.SourcePath)
	if err != nil {
		return nil, humaError(err)
	}

	count, err := s.services.retriever.Ingest(ctx, input.ID, doc.ID, input.Body.Text)
	if err != nil {
		// Remove the shell document so a failed ingest leaves nothing behind.
		_ = s.services.store.DeleteDocument(ctx, doc.ID)
		return nil, humaError(err)
	}

	out := &ingestDocumentOutput{}
	out.Body.Document = documentSummary(doc)
	out.Body.Chunks = count
	return out, nil
}

func (s *Server) handleDeleteDocument(ctx context.Context, input *documentIDInput) (*deleteOutput, error) {
	if err := s.services.store.DeleteDocument(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	out := &deleteOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleQuery(ctx context.Context, input *queryInput) (*queryOutput, error) {
	if _, err := s.services.store.GetProject(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}

	topK := input.Body.TopK
	if topK == 0 {
		topK = 5
	}

	var (
		matches []*store.Match
		err     error
	)
	if input.Body.Diverse {
		matches, err = s.services.retriever.QueryDiverse(ctx, input.ID, input.Body.Text, topK, input.Body.CandidateMultiplier)
	} else {
		matches, err = s.services.retriever.Query(ctx, input.ID, input.Body.Text, topK)
	}
	if err != nil {
		return nil, humaError(err)
	}

	out := &queryOutput{}
	out.Body.Matches = matchResults(matches)
	return out, nil
}

func (s *Server) handleListConversations(ctx context.Context, input *projectIDInput) (*listConversationsOutput, error) {
	if _, err := s.services.store.GetProject(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	convs, err := s.services.store.ListConversations(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	out := &listConversationsOutput{}
	out.Body.Conversations = make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out.Body.Conversations = append(out.Body.Conversations, ConversationSummary{
			ID: c.ID, ProjectID: c.ProjectID, Title: c.Title,
			Provider: c.Provider, Model: c.Model,
			CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Server) handleListMessages(ctx context.Context, input *conversationIDInput) (*listMessagesOutput, error) {
	if _, err := s.services.store.GetConversation(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	msgs, err := s.services.store.ListMessages(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	out := &listMessagesOutput{}
	out.Body.Messages = make([]MessageSummary, 0, len(msgs))
	for _, m := range msgs {
		out.Body.Messages = append(out.Body.Messages, MessageSummary{
			ID: m.ID, Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (s *Server) handleDeleteConversation(ctx context.Context, input *conversationIDInput) (*deleteOutput, error) {
	if err := s.services.store.DeleteConversation(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	out := &deleteOutput{}
	out.Body.Status = "deleted"
	return out, nil
}
