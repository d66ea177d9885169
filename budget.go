package aegisgate

import (
	"context"
	"net/url"
	"time"
)

// BudgetScope selects whose budget to read: a user's, or the whole
// organization's when UserID is empty.
type BudgetScope struct {
	UserID string
}

// BudgetContext is a snapshot of spend limits and remaining allowance.
type BudgetContext struct {
	Scope        string    `json:"scope"`
	LimitUSD     float64   `json:"limitUsd"`
	SpentUSD     float64   `json:"spentUsd"`
	RemainingUSD float64   `json:"remainingUsd"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`
}

// Exhausted reports whether the remaining allowance is zero or negative.
func (b *BudgetContext) Exhausted() bool {
	return b.RemainingUSD <= 0
}

// Usage records one unit of spend against a budget.
type Usage struct {
	CorrelationID string  `json:"correlationId"`
	UserID        string  `json:"userId,omitempty"`
	Model         string  `json:"model,omitempty"`
	InputTokens   int     `json:"inputTokens,omitempty"`
	OutputTokens  int     `json:"outputTokens,omitempty"`
	CostUSD       float64 `json:"costUsd"`
}

// BudgetClient tracks spend limits and usage.
type BudgetClient struct {
	client *Client
}

// Get fetches the budget snapshot for the given scope.
func (b *BudgetClient) Get(ctx context.Context, scope BudgetScope) (*BudgetContext, error) {
	path := "/api/v1/budgets/org"
	if scope.UserID != "" {
		path = "/api/v1/budgets/users/" + url.PathEscape(scope.UserID)
	}
	return call[BudgetContext](ctx, b.client, KindBudget, "fetch budget", "GET", path, nil)
}

// RecordUsage reports spend to the platform.
func (b *BudgetClient) RecordUsage(ctx context.Context, usage Usage) error {
	return callNoResult(ctx, b.client, KindBudget, "record usage", "POST", "/api/v1/usage", usage)
}

// MaybeRecordUsage is the best-effort variant of RecordUsage: failures are
// logged and swallowed. Use it on paths where losing a usage record is
// preferable to failing the caller's operation.
func (b *BudgetClient) MaybeRecordUsage(ctx context.Context, usage Usage) {
	if err := b.RecordUsage(ctx, usage); err != nil {
		b.client.log.Warn().
			Str("correlation_id", usage.CorrelationID).
			Err(err).
			Msg("usage record dropped")
	}
}
