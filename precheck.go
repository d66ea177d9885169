package aegisgate

import (
	"context"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"
)

// Decision is the outcome of a governance precheck.
type Decision string

// Precheck decisions.
const (
	DecisionAllow   Decision = "allow"
	DecisionDeny    Decision = "deny"
	DecisionBlock   Decision = "block"
	DecisionConfirm Decision = "confirm"
	DecisionRedact  Decision = "redact"
)

// PolicyContext carries the policy settings a precheck is evaluated under.
type PolicyContext struct {
	PolicyID      string   `json:"policyId,omitempty"`
	RiskThreshold float64  `json:"riskThreshold,omitempty"`
	RedactFields  []string `json:"redactFields,omitempty"`
}

// ToolContext carries metadata about the tool being invoked.
type ToolContext struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	RiskLevel   string `json:"riskLevel,omitempty"`
}

// PrecheckRequest describes an action to be evaluated. Context fields left
// nil are filled in best-effort from platform defaults before submission;
// caller-supplied fields always win over fetched defaults.
type PrecheckRequest struct {
	CorrelationID string         `json:"correlationId"`
	UserID        string         `json:"userId,omitempty"`
	Action        string         `json:"action"`
	ToolName      string         `json:"toolName,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`

	PolicyContext *PolicyContext `json:"policyContext,omitempty"`
	ToolContext   *ToolContext   `json:"toolContext,omitempty"`
	BudgetContext *BudgetContext `json:"budgetContext,omitempty"`
}

// PrecheckResult is the platform's decision for one request.
type PrecheckResult struct {
	CorrelationID  string    `json:"correlationId"`
	Decision       Decision  `json:"decision"`
	Reasons        []string  `json:"reasons,omitempty"`
	ConfirmationID string    `json:"confirmationId,omitempty"`
	RedactedFields []string  `json:"redactedFields,omitempty"`
	EvaluatedAt    time.Time `json:"evaluatedAt"`
}

// Confirm reports whether the action needs a human approval before it may
// proceed. The result's ConfirmationID can then be passed to
// Confirmations.WaitForApproval.
func (r *PrecheckResult) Confirm() bool {
	return r.Decision == DecisionConfirm
}

// PrecheckClient evaluates governance policy before actions proceed.
type PrecheckClient struct {
	client *Client
}

// Check evaluates a request against governance policy. A missing
// correlation ID is generated; missing policy, tool and budget context is
// enriched from the platform first (best-effort; see enrich).
func (p *PrecheckClient) Check(ctx context.Context, req PrecheckRequest) (*PrecheckResult, error) {
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}
	p.enrich(ctx, &req)
	return call[PrecheckResult](ctx, p.client, KindPrecheck, "precheck", "POST", "/api/v1/precheck", req)
}

// enrich fills missing context fields with platform defaults. The three
// lookups run concurrently and are joined before the precheck is submitted.
// Enrichment is an optimization, not a correctness requirement: any
// individual lookup failure is logged and swallowed, and the request goes
// out with whatever context could be gathered. Caller-supplied fields are
// never overwritten (mergo only fills empty destination fields).
func (p *PrecheckClient) enrich(ctx context.Context, req *PrecheckRequest) {
	var (
		wg     sync.WaitGroup
		policy *PolicyContext
		tool   *ToolContext
		budget *BudgetContext
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var out PolicyContext
		if err := p.client.api.Do(ctx, "GET", "/api/v1/policies/defaults", nil, &out); err != nil {
			p.client.log.Warn().Err(err).Msg("policy defaults enrichment failed")
			return
		}
		policy = &out
	}()

	if req.ToolName != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.client.Tools.Get(ctx, req.ToolName)
			if err != nil {
				p.client.log.Warn().Str("tool", req.ToolName).Err(err).Msg("tool metadata enrichment failed")
				return
			}
			tool = &ToolContext{Name: out.Name, Description: out.Description, RiskLevel: out.RiskLevel}
		}()
	}

	if req.UserID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.client.Budgets.Get(ctx, BudgetScope{UserID: req.UserID})
			if err != nil {
				p.client.log.Warn().Str("user", req.UserID).Err(err).Msg("budget context enrichment failed")
				return
			}
			budget = out
		}()
	}

	wg.Wait()

	if policy != nil {
		if req.PolicyContext == nil {
			req.PolicyContext = &PolicyContext{}
		}
		if err := mergo.Merge(req.PolicyContext, *policy); err != nil {
			p.client.log.Warn().Err(err).Msg("policy context merge failed")
		}
	}
	if tool != nil {
		if req.ToolContext == nil {
			req.ToolContext = &ToolContext{}
		}
		if err := mergo.Merge(req.ToolContext, *tool); err != nil {
			p.client.log.Warn().Err(err).Msg("tool context merge failed")
		}
	}
	if budget != nil && req.BudgetContext == nil {
		req.BudgetContext = budget
	}
}
