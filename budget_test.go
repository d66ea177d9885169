package aegisgate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisgate/client-go/internal/api"
)

func TestBudgetGet_ScopeSelectsPath(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			*(result.(*BudgetContext)) = BudgetContext{Scope: path}
			return nil
		},
	}
	c := newTestClient(tr)
	ctx := context.Background()

	org, err := c.Budgets.Get(ctx, BudgetScope{})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/budgets/org", org.Scope)

	user, err := c.Budgets.Get(ctx, BudgetScope{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/budgets/users/u1", user.Scope)
}

func TestBudgetContext_Exhausted(t *testing.T) {
	assert.True(t, (&BudgetContext{RemainingUSD: 0}).Exhausted())
	assert.True(t, (&BudgetContext{RemainingUSD: -3}).Exhausted())
	assert.False(t, (&BudgetContext{RemainingUSD: 0.01}).Exhausted())
}

func TestRecordUsage(t *testing.T) {
	var sent Usage
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			sent = body.(Usage)
			return nil
		},
	}
	c := newTestClient(tr)

	err := c.Budgets.RecordUsage(context.Background(), Usage{
		CorrelationID: "c1",
		Model:         "gpt-x",
		CostUSD:       0.42,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", sent.CorrelationID)
	assert.Equal(t, []string{"POST /api/v1/usage"}, tr.calls)
}

func TestMaybeRecordUsage_SwallowsFailure(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			return &api.APIError{StatusCode: 400, Message: "bad usage record"}
		},
	}
	c := newTestClient(tr)

	// Must not panic or surface the error.
	c.Budgets.MaybeRecordUsage(context.Background(), Usage{CorrelationID: "c1"})
	assert.Equal(t, 1, tr.callCount())
}
