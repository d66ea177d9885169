package aegisgate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisgate/client-go/internal/api"
)

func TestStatus_Terminal(t *testing.T) {
	terminal := []Status{StatusApproved, StatusDenied, StatusExpired, StatusCancelled}
	for _, st := range terminal {
		assert.True(t, st.Terminal(), "%s", st)
	}
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusError.Terminal(), "the client-local pseudo-state is not terminal")
}

func TestCreate_GeneratesCorrelationID(t *testing.T) {
	var sent CreateConfirmationParams
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			sent = body.(CreateConfirmationParams)
			*(result.(*Confirmation)) = Confirmation{
				ID:            "conf-1",
				CorrelationID: sent.CorrelationID,
				Status:        StatusPending,
			}
			return nil
		},
	}
	c := newTestClient(tr)

	conf, err := c.Confirmations.Create(context.Background(), CreateConfirmationParams{
		RequestType: "tool_call",
		RequestDesc: "send 400 emails",
		TTL:         10 * time.Minute,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, conf.CorrelationID)
	assert.Equal(t, 600, sent.TTLSeconds)
	assert.Equal(t, []string{"POST /api/v1/confirmations"}, tr.calls)
}

func TestCreate_KeepsCallerCorrelationID(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			p := body.(CreateConfirmationParams)
			*(result.(*Confirmation)) = Confirmation{CorrelationID: p.CorrelationID, Status: StatusPending}
			return nil
		},
	}
	c := newTestClient(tr)

	conf, err := c.Confirmations.Create(context.Background(), CreateConfirmationParams{
		CorrelationID: "mine-123",
		RequestType:   "tool_call",
	})

	require.NoError(t, err)
	assert.Equal(t, "mine-123", conf.CorrelationID)
}

func TestCreate_ServerMayShortCircuitToTerminal(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			*(result.(*Confirmation)) = Confirmation{Status: StatusDenied}
			return nil
		},
	}
	c := newTestClient(tr)

	conf, err := c.Confirmations.Create(context.Background(), CreateConfirmationParams{RequestType: "x"})
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, conf.Status)
}

func TestCreateBatch_PartialFailure(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			if call == 2 {
				return &api.APIError{StatusCode: 400, Message: "bad payload"}
			}
			p := body.(CreateConfirmationParams)
			*(result.(*Confirmation)) = Confirmation{CorrelationID: p.CorrelationID, Status: StatusPending}
			return nil
		},
	}
	c := newTestClient(tr)

	params := []CreateConfirmationParams{
		{CorrelationID: "a", RequestType: "x"},
		{CorrelationID: "b", RequestType: "x"},
		{CorrelationID: "c", RequestType: "x"},
	}
	results := c.Confirmations.CreateBatch(context.Background(), params)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Confirmation)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "a", results[0].Confirmation.CorrelationID)
	assert.Equal(t, "c", results[2].Confirmation.CorrelationID)
}

func TestApproveDenyCancel_Paths(t *testing.T) {
	tr := &fakeTransport{
		handler: func(call int, method, path string, body, result any) error {
			if conf, ok := result.(*Confirmation); ok {
				*conf = Confirmation{Status: StatusApproved}
			}
			return nil
		},
	}
	c := newTestClient(tr)
	ctx := context.Background()

	_, err := c.Confirmations.Approve(ctx, "cid", "alice", "looks fine")
	require.NoError(t, err)
	_, err = c.Confirmations.Deny(ctx, "cid", "bob", "too risky")
	require.NoError(t, err)
	require.NoError(t, c.Confirmations.Cancel(ctx, "cid"))

	assert.Equal(t, []string{
		"POST /api/v1/confirmations/cid/approve",
		"POST /api/v1/confirmations/cid/deny",
		"DELETE /api/v1/confirmations/cid",
	}, tr.calls)
}
