package aegisgate

import (
	"context"
	"net/url"
	"time"
)

// Tool is a registered tool definition.
type Tool struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	RiskLevel    string         `json:"riskLevel,omitempty"`
	Schema       map[string]any `json:"schema,omitempty"`
	RegisteredAt time.Time      `json:"registeredAt,omitempty"`
}

// ToolCall describes one tool invocation to run under governance.
type ToolCall struct {
	Name          string         `json:"name"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Arguments     map[string]any `json:"arguments,omitempty"`
}

// ToolResult is the outcome of a single governed tool invocation.
type ToolResult struct {
	Name          string         `json:"name"`
	CorrelationID string         `json:"correlationId"`
	Output        map[string]any `json:"output,omitempty"`
	DurationMS    int64          `json:"durationMs,omitempty"`
}

// ToolExecution is one entry of a batch execution. Exactly one of Result
// and Err is set; entries keep the input order.
type ToolExecution struct {
	Call   ToolCall
	Result *ToolResult
	Err    error
}

// ToolClient registers and executes tools through the platform.
type ToolClient struct {
	client *Client
}

// Register registers (or re-registers) a tool definition.
func (t *ToolClient) Register(ctx context.Context, tool Tool) (*Tool, error) {
	return call[Tool](ctx, t.client, KindTool, "register tool", "POST", "/api/v1/tools", tool)
}

// Get fetches one tool definition by name.
func (t *ToolClient) Get(ctx context.Context, name string) (*Tool, error) {
	return call[Tool](ctx, t.client, KindTool, "fetch tool", "GET", "/api/v1/tools/"+url.PathEscape(name), nil)
}

// List returns all tools registered for the organization.
func (t *ToolClient) List(ctx context.Context) ([]Tool, error) {
	out, err := call[[]Tool](ctx, t.client, KindTool, "list tools", "GET", "/api/v1/tools", nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Unregister removes a tool definition.
func (t *ToolClient) Unregister(ctx context.Context, name string) error {
	return callNoResult(ctx, t.client, KindTool, "unregister tool", "DELETE", "/api/v1/tools/"+url.PathEscape(name), nil)
}

// Execute runs one tool call through the platform.
func (t *ToolClient) Execute(ctx context.Context, tcall ToolCall) (*ToolResult, error) {
	return call[ToolResult](ctx, t.client, KindTool, "execute tool", "POST", "/api/v1/tools/execute", tcall)
}

// ExecuteBatch runs the calls sequentially and best-effort: a failed call
// is recorded in its entry and does not abort the batch. The returned slice
// has one entry per input call, in input order; callers must inspect each
// entry's Err rather than rely on an overall error.
func (t *ToolClient) ExecuteBatch(ctx context.Context, calls []ToolCall) []ToolExecution {
	results := make([]ToolExecution, len(calls))
	for i, tc := range calls {
		res, err := t.Execute(ctx, tc)
		results[i] = ToolExecution{Call: tc, Result: res, Err: err}
		if err != nil {
			t.client.log.Warn().
				Str("tool", tc.Name).
				Str("correlation_id", tc.CorrelationID).
				Err(err).
				Msg("batch tool execution failed for item")
		}
	}
	return results
}
