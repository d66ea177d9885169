package aegisgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollOptions configures Poll and PollBatch.
type PollOptions struct {
	// Interval between status fetches. Defaults to 2s.
	Interval time.Duration
	// Timeout bounds the whole polling session. Defaults to 5m. The
	// deadline is checked once per iteration; an in-flight fetch is never
	// preempted.
	Timeout time.Duration
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = defaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultPollTimeout
	}
	return o
}

// WaitOptions configures WaitForApproval.
type WaitOptions struct {
	// Interval between status fetches. Defaults to 2s.
	Interval time.Duration
	// Timeout bounds the wait. Defaults to 5m.
	Timeout time.Duration
	// OnStatusChange is invoked with every observed status, terminal or
	// not, before the outcome is decided. A failed fetch is reported as
	// StatusError. May be nil.
	OnStatusChange func(Status)
}

// Poll repeatedly fetches the confirmation's status and invokes cb with
// every observed record until a terminal status arrives or the timeout
// elapses.
//
// Stop conditions:
//   - a terminal status is observed: cb sees it, Poll returns nil;
//   - the timeout elapses: Poll returns an error matching
//     ErrConfirmationTimeout;
//   - a fetch fails with a non-retryable confirmation error: it propagates
//     immediately;
//   - any other fetch failure is logged and polling continues after the
//     usual interval. Transient fetch failures do not abort polling.
//
// Once a terminal status has been observed, no further fetches are issued.
func (c *ConfirmationClient) Poll(ctx context.Context, correlationID string, cb func(*Confirmation), opts PollOptions) error {
	opts = opts.withDefaults()
	start := time.Now()

	for {
		conf, err := c.Get(ctx, correlationID)
		switch {
		case err == nil:
			if cb != nil {
				cb(conf)
			}
			if conf.Status.Terminal() {
				return nil
			}
		case isFatalConfirmationError(err):
			return err
		default:
			c.client.log.Warn().
				Str("correlation_id", correlationID).
				Err(err).
				Msg("confirmation status fetch failed, continuing to poll")
		}

		if err := c.client.sleep(ctx, opts.Interval); err != nil {
			return err
		}
		if time.Since(start) >= opts.Timeout {
			return timeoutError(correlationID, opts.Timeout.String())
		}
	}
}

// WaitForApproval blocks until the confirmation reaches a terminal status
// or the timeout elapses. It returns the full record only for an approved
// outcome; any other terminal status, and the timeout, produce a
// descriptive confirmation error. Every observed status is reported through
// opts.OnStatusChange before the outcome is decided.
func (c *ConfirmationClient) WaitForApproval(ctx context.Context, correlationID string, opts WaitOptions) (*Confirmation, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	start := time.Now()

	for {
		conf, err := c.Get(ctx, correlationID)
		switch {
		case err == nil:
			if opts.OnStatusChange != nil {
				opts.OnStatusChange(conf.Status)
			}
			if conf.Status == StatusApproved {
				return conf, nil
			}
			if conf.Status.Terminal() {
				return nil, &GovernanceError{
					Kind:    KindConfirmation,
					Message: fmt.Sprintf("confirmation %s resolved as %s", correlationID, conf.Status),
				}
			}
		case isFatalConfirmationError(err):
			return nil, err
		default:
			if opts.OnStatusChange != nil {
				opts.OnStatusChange(StatusError)
			}
			c.client.log.Warn().
				Str("correlation_id", correlationID).
				Err(err).
				Msg("confirmation status fetch failed, continuing to wait")
		}

		if err := c.client.sleep(ctx, interval); err != nil {
			return nil, err
		}
		if time.Since(start) >= timeout {
			return nil, timeoutError(correlationID, timeout.String())
		}
	}
}

// BatchOutcome is the final per-id result of PollBatch. Exactly one of the
// fields is meaningful: Confirmation for ids that reached a terminal
// status, TimedOut for ids still pending when the shared window closed,
// Err for ids whose fetch failed fatally.
type BatchOutcome struct {
	Confirmation *Confirmation
	TimedOut     bool
	Err          error
}

// PollBatch polls a set of correlation IDs under one shared timeout window.
// Each interval tick it fetches the still-pending subset (in unspecified
// order), invoking cb per observed record, and drops ids that reached a
// terminal status. The returned map has an explicit outcome for every input
// id; no id is ever silently absent.
func (c *ConfirmationClient) PollBatch(ctx context.Context, correlationIDs []string, cb func(string, *Confirmation), opts PollOptions) (map[string]BatchOutcome, error) {
	opts = opts.withDefaults()
	start := time.Now()

	outcomes := make(map[string]BatchOutcome, len(correlationIDs))
	pending := make([]string, 0, len(correlationIDs))
	seen := make(map[string]struct{}, len(correlationIDs))
	for _, id := range correlationIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, id)
	}

	for len(pending) > 0 {
		next := pending[:0]
		for _, id := range pending {
			conf, err := c.Get(ctx, id)
			switch {
			case err == nil:
				if cb != nil {
					cb(id, conf)
				}
				if conf.Status.Terminal() {
					outcomes[id] = BatchOutcome{Confirmation: conf}
					continue
				}
				next = append(next, id)
			case isFatalConfirmationError(err):
				outcomes[id] = BatchOutcome{Err: err}
			default:
				c.client.log.Warn().
					Str("correlation_id", id).
					Err(err).
					Msg("batch confirmation fetch failed, continuing to poll")
				next = append(next, id)
			}
		}
		pending = next

		if len(pending) == 0 {
			break
		}
		if err := c.client.sleep(ctx, opts.Interval); err != nil {
			return outcomes, err
		}
		if time.Since(start) >= opts.Timeout {
			for _, id := range pending {
				outcomes[id] = BatchOutcome{TimedOut: true}
			}
			return outcomes, nil
		}
	}

	return outcomes, nil
}

// isFatalConfirmationError reports whether a fetch error must abort a
// polling session: a confirmation-kind error marked non-retryable (404,
// auth rejection mapped through the taxonomy, etc.). Synthetic exhaustion
// errors carry the governance kind and intentionally do not match, so a
// burst of transient failures keeps the session alive.
func isFatalConfirmationError(err error) bool {
	var gerr *GovernanceError
	if !errors.As(err, &gerr) {
		return false
	}
	return (gerr.Kind == KindConfirmation || gerr.Kind == KindAuthentication) && !gerr.Retryable
}
