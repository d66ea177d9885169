package aegisgate

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Document is a unit of contextual memory stored with the platform.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Tags      []string       `json:"tags,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt,omitempty"`
}

// SearchQuery selects documents from contextual memory.
type SearchQuery struct {
	Text  string   `json:"text"`
	Tags  []string `json:"tags,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

// DocumentMatch is one search hit with its relevance score.
type DocumentMatch struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// ContextClient stores and retrieves contextual memory documents.
type ContextClient struct {
	client *Client
}

// SaveDocument stores a document. An empty ID is generated client-side so
// the call is safe to retry.
func (c *ContextClient) SaveDocument(ctx context.Context, doc Document) (*Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return call[Document](ctx, c.client, KindContext, "save document", "POST", "/api/v1/context/documents", doc)
}

// MaybeSaveDocument is the best-effort variant of SaveDocument: failures
// are logged and swallowed.
func (c *ContextClient) MaybeSaveDocument(ctx context.Context, doc Document) {
	if _, err := c.SaveDocument(ctx, doc); err != nil {
		c.client.log.Warn().
			Str("document_id", doc.ID).
			Err(err).
			Msg("context document dropped")
	}
}

// Search queries contextual memory.
func (c *ContextClient) Search(ctx context.Context, q SearchQuery) ([]DocumentMatch, error) {
	out, err := call[[]DocumentMatch](ctx, c.client, KindContext, "search documents", "POST", "/api/v1/context/search", q)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// DeleteDocument removes a document by ID.
func (c *ContextClient) DeleteDocument(ctx context.Context, id string) error {
	return callNoResult(ctx, c.client, KindContext, "delete document", "DELETE", "/api/v1/context/documents/"+url.PathEscape(id), nil)
}
