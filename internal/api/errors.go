package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError represents a non-2xx HTTP response from the AegisGate API.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string // if returned by server
	Body       []byte // raw response body for diagnostics
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// TransportKind classifies a transport-level failure that produced no HTTP
// status code.
type TransportKind string

const (
	// KindTimeout covers request deadlines and net.Error timeouts.
	KindTimeout TransportKind = "timeout"
	// KindConnection covers refused/reset connections and broken pipes.
	KindConnection TransportKind = "connection"
	// KindDNS covers name resolution failures.
	KindDNS TransportKind = "dns"
	// KindUnknown is used when the failure cannot be classified.
	KindUnknown TransportKind = "unknown"
)

// TransportError represents a network-level failure without an HTTP response.
// Kind is derived from the underlying typed error where possible; free-text
// matching is only a fallback for opaque errors.
type TransportError struct {
	Kind TransportKind
	URL  string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a request failing this way is worth repeating.
// Timeouts, connection failures and DNS failures are transient; unclassified
// failures are not retried.
func (e *TransportError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindConnection, KindDNS:
		return true
	}
	return false
}

// classifyTransport builds a TransportError from a raw client error.
func classifyTransport(url string, err error) *TransportError {
	return &TransportError{
		Kind: transportKind(err),
		URL:  url,
		Err:  err,
	}
}

func transportKind(err error) TransportKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	// Fallback for errors that reach us as plain strings (e.g. wrapped by
	// intermediate layers that discard the original type).
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") || strings.Contains(msg, "eof"):
		return KindConnection
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "dns"):
		return KindDNS
	}
	return KindUnknown
}
