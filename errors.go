package aegisgate

import (
	"errors"
	"fmt"

	"github.com/aegisgate/client-go/internal/api"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrMissingOrgID is returned when no organization ID is provided.
	ErrMissingOrgID = errors.New("organization ID is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrUnauthorized is returned when the API key is invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired API key")

	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidConfig is returned when client configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfirmationTimeout is returned when a poll or wait exceeds its
	// timeout without observing a terminal status.
	ErrConfirmationTimeout = errors.New("confirmation polling timed out")
)

// ErrorKind identifies which part of the SDK produced an error.
type ErrorKind string

// Error kinds.
const (
	KindGovernance     ErrorKind = "governance"
	KindPrecheck       ErrorKind = "precheck"
	KindConfirmation   ErrorKind = "confirmation"
	KindBudget         ErrorKind = "budget"
	KindAuthentication ErrorKind = "authentication"
	KindTool           ErrorKind = "tool"
	KindAnalytics      ErrorKind = "analytics"
	KindContext        ErrorKind = "context"
	KindConfig         ErrorKind = "config"
)

// AegisGateError is implemented by all SDK errors.
type AegisGateError interface {
	error
	AegisGateError() // marker method
}

// GovernanceError is the SDK's uniform error type. Retryable is derived from
// StatusCode (or the transport failure kind) at construction time and never
// changes afterwards; callers branch on Kind and Retryable rather than
// parsing Message.
type GovernanceError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // 0 when no HTTP status was available
	Retryable  bool
	Raw        []byte // raw response body, if any
	Err        error  // underlying cause, if any

	timeout bool // set only by the polling timeout constructors
}

func (e *GovernanceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *GovernanceError) Unwrap() error {
	return e.Err
}

// AegisGateError implements the AegisGateError interface.
func (e *GovernanceError) AegisGateError() {}

// Is implements errors.Is for sentinel error matching.
func (e *GovernanceError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == 401
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRateLimited:
		return e.StatusCode == 429
	case ErrInvalidConfig:
		return e.Kind == KindConfig
	case ErrConfirmationTimeout:
		return e.timeout
	}
	return false
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// wrapAs converts a transport-layer error into a *GovernanceError of the
// given kind. Errors that are already GovernanceErrors pass through
// unchanged, so retry wrappers never stack.
func wrapAs(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}

	var gerr *GovernanceError
	if errors.As(err, &gerr) {
		return err
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		k := kind
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			k = KindAuthentication
		}
		return &GovernanceError{
			Kind:       k,
			Message:    apiErr.Message,
			StatusCode: apiErr.StatusCode,
			Retryable:  retryableStatus(apiErr.StatusCode),
			Raw:        apiErr.Body,
			Err:        err,
		}
	}

	var tErr *api.TransportError
	if errors.As(err, &tErr) {
		return &GovernanceError{
			Kind:      kind,
			Message:   tErr.Error(),
			Retryable: tErr.Retryable(),
			Err:       err,
		}
	}

	return &GovernanceError{
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	}
}

// exhaustedError builds the synthetic terminal error raised when every
// allowed attempt of an operation has failed with a retryable error.
func exhaustedError(label string, attempts int, last error) error {
	return &GovernanceError{
		Kind:      KindGovernance,
		Message:   fmt.Sprintf("%s failed after %d attempts: %v", label, attempts, last),
		Retryable: false,
		Err:       last,
	}
}

// timeoutError builds the terminal error raised when a polling loop exceeds
// its timeout window.
func timeoutError(correlationID string, timeout string) error {
	return &GovernanceError{
		Kind:      KindConfirmation,
		Message:   fmt.Sprintf("confirmation %s: no terminal status within %s", correlationID, timeout),
		Retryable: false,
		timeout:   true,
	}
}

// Category is a coarse classification of an error used for observability
// and reporting. It never drives control flow.
type Category string

// Error categories.
const (
	CategoryNetwork        Category = "network"
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryValidation     Category = "validation"
	CategoryRateLimit      Category = "rate_limit"
	CategoryServerError    Category = "server_error"
	CategoryClientError    Category = "client_error"
	CategoryUnknown        Category = "unknown"
)

// Categorize maps any error to a Category. The function is pure: the same
// error always yields the same category.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var tErr *api.TransportError
	if errors.As(err, &tErr) {
		return CategoryNetwork
	}

	var gerr *GovernanceError
	if !errors.As(err, &gerr) {
		return CategoryUnknown
	}

	switch {
	case gerr.StatusCode == 401:
		return CategoryAuthentication
	case gerr.StatusCode == 403:
		return CategoryAuthorization
	case gerr.StatusCode == 400 || gerr.StatusCode == 422:
		return CategoryValidation
	case gerr.StatusCode == 429:
		return CategoryRateLimit
	case gerr.StatusCode >= 500 && gerr.StatusCode <= 599:
		return CategoryServerError
	case gerr.StatusCode >= 400 && gerr.StatusCode <= 499:
		return CategoryClientError
	}
	return CategoryUnknown
}

// retryablePredicate narrows retryability to one error kind: a feature
// client only retries errors it produced itself and marked retryable.
// Authentication errors share every client's predicate path so they always
// short-circuit.
func retryablePredicate(kind ErrorKind) func(error) bool {
	return func(err error) bool {
		var gerr *GovernanceError
		if !errors.As(err, &gerr) {
			return false
		}
		return gerr.Kind == kind && gerr.Retryable
	}
}
