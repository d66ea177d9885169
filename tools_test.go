package aegisgate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisgate/client-go/internal/api"
)

func TestExecuteBatch_PartialFailure(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			if call == 2 {
				return &api.APIError{StatusCode: 422, Message: "invalid arguments"}
			}
			tc := body.(ToolCall)
			*(result.(*ToolResult)) = ToolResult{Name: tc.Name, CorrelationID: tc.CorrelationID}
			return nil
		},
	}
	c := newTestClient(tr)

	calls := []ToolCall{
		{Name: "search", CorrelationID: "c1"},
		{Name: "mailer", CorrelationID: "c2"},
		{Name: "calc", CorrelationID: "c3"},
	}
	results := c.Tools.ExecuteBatch(context.Background(), calls)

	require.Len(t, results, 3, "one entry per input call")
	assert.Equal(t, "search", results[0].Call.Name)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "search", results[0].Result.Name)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Result)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, "calc", results[2].Result.Name)
}

func TestExecuteBatch_Empty(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(tr)

	assert.Empty(t, c.Tools.ExecuteBatch(context.Background(), nil))
	assert.Equal(t, 0, tr.callCount())
}

func TestRegisterAndUnregister_Paths(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			if tool, ok := result.(*Tool); ok {
				*tool = body.(Tool)
			}
			return nil
		},
	}
	c := newTestClient(tr)
	ctx := context.Background()

	reg, err := c.Tools.Register(ctx, Tool{Name: "mailer", RiskLevel: "high"})
	require.NoError(t, err)
	assert.Equal(t, "mailer", reg.Name)

	require.NoError(t, c.Tools.Unregister(ctx, "mailer"))

	assert.Equal(t, []string{
		"POST /api/v1/tools",
		"DELETE /api/v1/tools/mailer",
	}, tr.calls)
}

func TestExecute_RetriesRateLimit(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			if call == 1 {
				return &api.APIError{StatusCode: 429, Message: "slow down"}
			}
			*(result.(*ToolResult)) = ToolResult{Name: "calc"}
			return nil
		},
	}
	c := newTestClient(tr)

	res, err := c.Tools.Execute(context.Background(), ToolCall{Name: "calc"})
	require.NoError(t, err)
	assert.Equal(t, "calc", res.Name)
	assert.Equal(t, 2, tr.callCount())
}
