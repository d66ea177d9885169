package aegisgate

import (
	"context"
	"time"
)

// Event is one analytics datapoint.
type Event struct {
	Name          string         `json:"name"`
	CorrelationID string         `json:"correlationId,omitempty"`
	UserID        string         `json:"userId,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
	Timestamp     time.Time      `json:"timestamp,omitempty"`
}

// Query selects an analytics aggregation window.
type Query struct {
	Metric  string    `json:"metric"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	GroupBy string    `json:"groupBy,omitempty"`
}

// ReportRow is one aggregated row of a report.
type ReportRow struct {
	Group string  `json:"group,omitempty"`
	Value float64 `json:"value"`
	Count int64   `json:"count"`
}

// Report is the result of an analytics query.
type Report struct {
	Metric string      `json:"metric"`
	Rows   []ReportRow `json:"rows"`
}

// AnalyticsClient records and queries governance analytics.
type AnalyticsClient struct {
	client *Client
}

// Track records a single event.
func (a *AnalyticsClient) Track(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return callNoResult(ctx, a.client, KindAnalytics, "track event", "POST", "/api/v1/analytics/events", event)
}

// MaybeTrack is the best-effort variant of Track: failures are logged and
// swallowed so analytics never breaks the caller's flow.
func (a *AnalyticsClient) MaybeTrack(ctx context.Context, event Event) {
	if err := a.Track(ctx, event); err != nil {
		a.client.log.Warn().
			Str("event", event.Name).
			Err(err).
			Msg("analytics event dropped")
	}
}

// RunQuery runs an aggregation query against recorded events.
func (a *AnalyticsClient) RunQuery(ctx context.Context, q Query) (*Report, error) {
	return call[Report](ctx, a.client, KindAnalytics, "analytics query", "POST", "/api/v1/analytics/query", q)
}
