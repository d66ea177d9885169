package aegisgate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisgate/client-go/internal/api"
)

func TestSaveDocument_GeneratesID(t *testing.T) {
	var sent Document
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			sent = body.(Document)
			*(result.(*Document)) = sent
			return nil
		},
	}
	c := newTestClient(tr)

	doc, err := c.Context.SaveDocument(context.Background(), Document{Content: "prefers terse replies"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, sent.ID, doc.ID)

	doc, err = c.Context.SaveDocument(context.Background(), Document{ID: "doc-1", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID, "caller-supplied IDs are kept")
}

func TestSearch(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			q := body.(SearchQuery)
			*(result.(*[]DocumentMatch)) = []DocumentMatch{
				{Document: Document{ID: "doc-1", Content: q.Text}, Score: 0.92},
			}
			return nil
		},
	}
	c := newTestClient(tr)

	matches, err := c.Context.Search(context.Background(), SearchQuery{Text: "billing", Limit: 5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc-1", matches[0].Document.ID)
	assert.InDelta(t, 0.92, matches[0].Score, 1e-9)
	assert.Equal(t, []string{"POST /api/v1/context/search"}, tr.calls)
}

func TestDeleteDocument_EscapesID(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(tr)

	require.NoError(t, c.Context.DeleteDocument(context.Background(), "doc/with spaces"))
	assert.Equal(t, []string{"DELETE /api/v1/context/documents/doc%2Fwith%20spaces"}, tr.calls)
}

func TestMaybeSaveDocument_SwallowsFailure(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			return &api.APIError{StatusCode: 500, Message: "internal"}
		},
	}
	c := newTestClient(tr)

	c.Context.MaybeSaveDocument(context.Background(), Document{ID: "doc-1", Content: "x"})
	assert.Equal(t, 3, tr.callCount(), "save is retried before being dropped")
}
