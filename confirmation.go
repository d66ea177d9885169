package aegisgate

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a confirmation request.
//
// A confirmation starts pending and transitions exactly once to one of the
// terminal states; terminal states never revert. StatusError is a
// client-local pseudo-state reported by polling callbacks when a status
// fetch fails; it is never a server-side state.
type Status string

// Confirmation statuses.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Terminal reports whether the status ends a confirmation's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusDenied, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Confirmation is a server-side approval record. The client only observes
// it; transitions happen server-side through Approve, Deny and Cancel.
type Confirmation struct {
	ID             string         `json:"id"`
	CorrelationID  string         `json:"correlationId"`
	Status         Status         `json:"status"`
	RequestType    string         `json:"requestType"`
	RequestDesc    string         `json:"requestDesc"`
	RequestPayload map[string]any `json:"requestPayload,omitempty"`
	Reasons        []string       `json:"reasons,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	ExpiresAt      time.Time      `json:"expiresAt"`
	ApprovedAt     *time.Time     `json:"approvedAt,omitempty"`
}

// CreateConfirmationParams describes a new confirmation request.
// CorrelationID is generated when empty.
type CreateConfirmationParams struct {
	CorrelationID  string         `json:"correlationId"`
	RequestType    string         `json:"requestType"`
	RequestDesc    string         `json:"requestDesc"`
	RequestPayload map[string]any `json:"requestPayload,omitempty"`
	Reasons        []string       `json:"reasons,omitempty"`
	TTL            time.Duration  `json:"-"`
	TTLSeconds     int            `json:"ttlSeconds,omitempty"`
}

// ConfirmationResult is one entry of a best-effort batch creation. Exactly
// one of Confirmation and Err is set.
type ConfirmationResult struct {
	Params       CreateConfirmationParams
	Confirmation *Confirmation
	Err          error
}

// ConfirmationClient manages approval workflows.
type ConfirmationClient struct {
	client *Client
}

// Create submits a new confirmation request and returns the created record.
// The record is normally pending, but the server may short-circuit straight
// to a terminal state (e.g. auto-approval rules).
func (c *ConfirmationClient) Create(ctx context.Context, params CreateConfirmationParams) (*Confirmation, error) {
	if params.CorrelationID == "" {
		params.CorrelationID = uuid.NewString()
	}
	if params.TTL > 0 {
		params.TTLSeconds = int(params.TTL / time.Second)
	}
	return call[Confirmation](ctx, c.client, KindConfirmation, "create confirmation", "POST", "/api/v1/confirmations", params)
}

// CreateBatch creates multiple confirmations best-effort: a failed item is
// recorded in its result entry and does not abort the batch. Results are
// returned in input order; callers must inspect each entry's Err.
func (c *ConfirmationClient) CreateBatch(ctx context.Context, params []CreateConfirmationParams) []ConfirmationResult {
	results := make([]ConfirmationResult, len(params))
	for i, p := range params {
		conf, err := c.Create(ctx, p)
		results[i] = ConfirmationResult{Params: p, Confirmation: conf, Err: err}
		if err != nil {
			c.client.log.Warn().
				Str("correlation_id", p.CorrelationID).
				Err(err).
				Msg("batch confirmation creation failed for item")
		}
	}
	return results
}

// Get fetches the current record for a correlation ID. The fetch is wrapped
// by the retry executor; only retryable confirmation errors are repeated.
func (c *ConfirmationClient) Get(ctx context.Context, correlationID string) (*Confirmation, error) {
	path := fmt.Sprintf("/api/v1/confirmations/%s", url.PathEscape(correlationID))
	return call[Confirmation](ctx, c.client, KindConfirmation, "fetch confirmation status", "GET", path, nil)
}

// resolveParams is the approve/deny request body.
type resolveParams struct {
	Actor   string `json:"actor,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Approve resolves a pending confirmation as approved.
func (c *ConfirmationClient) Approve(ctx context.Context, correlationID, actor, comment string) (*Confirmation, error) {
	path := fmt.Sprintf("/api/v1/confirmations/%s/approve", url.PathEscape(correlationID))
	return call[Confirmation](ctx, c.client, KindConfirmation, "approve confirmation", "POST", path, resolveParams{Actor: actor, Comment: comment})
}

// Deny resolves a pending confirmation as denied.
func (c *ConfirmationClient) Deny(ctx context.Context, correlationID, actor, comment string) (*Confirmation, error) {
	path := fmt.Sprintf("/api/v1/confirmations/%s/deny", url.PathEscape(correlationID))
	return call[Confirmation](ctx, c.client, KindConfirmation, "deny confirmation", "POST", path, resolveParams{Actor: actor, Comment: comment})
}

// Cancel withdraws a pending confirmation.
func (c *ConfirmationClient) Cancel(ctx context.Context, correlationID string) error {
	path := fmt.Sprintf("/api/v1/confirmations/%s", url.PathEscape(correlationID))
	return callNoResult(ctx, c.client, KindConfirmation, "cancel confirmation", "DELETE", path, nil)
}
