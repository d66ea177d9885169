package aegisgate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aegisgate/client-go/internal/api"
	"github.com/aegisgate/client-go/internal/retry"
)

// transport abstracts the HTTP layer so tests can substitute fakes.
// *api.Client is the production implementation.
type transport interface {
	Do(ctx context.Context, method, path string, body, result any) error
}

// PlatformInfo contains server-side platform configuration.
type PlatformInfo struct {
	Version                string        `json:"version"`
	Features               []string      `json:"features"`
	DefaultConfirmationTTL time.Duration `json:"-"`
	ConfirmationTTLSeconds int           `json:"defaultConfirmationTtl"`
}

// Client is the main AegisGate client. Feature clients hang off it as
// fields; all of them share its transport, retry configuration and logger.
type Client struct {
	api     transport
	apiHTTP *api.Client // nil when a fake transport was injected
	log     zerolog.Logger
	sleep   func(context.Context, time.Duration) error

	mu     sync.RWMutex
	cfg    Config // current immutable snapshot; swap via Reconfigure
	closed bool

	// Feature clients.
	Prechecks     *PrecheckClient
	Confirmations *ConfirmationClient
	Budgets       *BudgetClient
	Tools         *ToolClient
	Analytics     *AnalyticsClient
	Context       *ContextClient
}

// New creates a new AegisGate client for the given API key and organization.
// Configuration is validated before any network call; unless
// WithoutKeyVerification is set, the key is then verified against the API.
func New(apiKey, orgID string, opts ...Option) (*Client, error) {
	cc := &clientConfig{
		cfg: Config{
			APIKey:         apiKey,
			OrgID:          orgID,
			BaseURL:        defaultBaseURL,
			Timeout:        defaultTimeout,
			MaxRetries:     defaultMaxRetries,
			RetryBaseDelay: defaultRetryBaseDelay,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cc)
	}

	if err := cc.cfg.validate(); err != nil {
		return nil, err
	}

	var apiOpts []api.Option
	if cc.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cc.httpClient))
	}
	apiOpts = append(apiOpts,
		api.WithBaseURL(cc.cfg.BaseURL),
		api.WithTimeout(cc.cfg.Timeout),
		api.WithOrgID(cc.cfg.OrgID),
	)
	apiClient := api.New(cc.cfg.APIKey, apiOpts...)

	c := &Client{
		api:     apiClient,
		apiHTTP: apiClient,
		log:     cc.logger,
		sleep:   retry.SleepContext,
		cfg:     cc.cfg,
	}
	c.initFeatureClients()

	if !cc.skipVerify {
		ctx, cancel := context.WithTimeout(context.Background(), cc.cfg.Timeout)
		defer cancel()
		if err := c.VerifyKey(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewFromEnv creates a client configured from AEGISGATE_* environment
// variables, with opts applied on top.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	all := make([]Option, 0, len(opts)+4)
	all = append(all,
		WithBaseURL(cfg.BaseURL),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithRetryBaseDelay(cfg.RetryBaseDelay),
	)
	all = append(all, opts...)

	return New(cfg.APIKey, cfg.OrgID, all...)
}

func (c *Client) initFeatureClients() {
	c.Prechecks = &PrecheckClient{client: c}
	c.Confirmations = &ConfirmationClient{client: c}
	c.Budgets = &BudgetClient{client: c}
	c.Tools = &ToolClient{client: c}
	c.Analytics = &AnalyticsClient{client: c}
	c.Context = &ContextClient{client: c}
}

// snapshot returns the current configuration. Operations capture one
// snapshot when they start and keep it for their lifetime, so a concurrent
// Reconfigure never changes an in-flight operation's policy.
func (c *Client) snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Reconfigure atomically swaps the configuration snapshot. The new snapshot
// is validated before being applied; on validation failure the previous
// configuration stays in effect. Transport-level settings (base URL,
// timeout) are propagated when the client owns its transport.
func (c *Client) Reconfigure(opts ...Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	cc := &clientConfig{cfg: c.cfg, logger: c.log}
	for _, opt := range opts {
		opt(cc)
	}
	if err := cc.cfg.validate(); err != nil {
		return err
	}

	c.cfg = cc.cfg
	c.log = cc.logger
	if c.apiHTTP != nil {
		c.apiHTTP.SetBaseURL(cc.cfg.BaseURL)
		c.apiHTTP.SetTimeout(cc.cfg.Timeout)
	}
	return nil
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Close marks the client closed. Subsequent calls fail with ErrClientClosed;
// in-flight calls run to completion.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// VerifyKey validates the API key and organization against the platform.
func (c *Client) VerifyKey(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	var result struct {
		OK bool `json:"ok"`
	}
	if err := c.api.Do(ctx, "GET", "/api/v1/auth/verify", nil, &result); err != nil {
		return wrapAs(KindAuthentication, err)
	}
	if !result.OK {
		return &GovernanceError{
			Kind:       KindAuthentication,
			Message:    "API key rejected",
			StatusCode: 401,
		}
	}
	return nil
}

// GetPlatformInfo fetches platform configuration.
func (c *Client) GetPlatformInfo(ctx context.Context) (*PlatformInfo, error) {
	info, err := call[PlatformInfo](ctx, c, KindGovernance, "platform info", "GET", "/api/v1/platform", nil)
	if err != nil {
		return nil, err
	}
	info.DefaultConfirmationTTL = time.Duration(info.ConfirmationTTLSeconds) * time.Second
	return info, nil
}

// retryConfig builds a retry executor config from the current snapshot.
// The policy is immutable for the call it is built for.
func (c *Client) retryConfig(label string, kind ErrorKind) retry.Config {
	cfg := c.snapshot()
	return retry.Config{
		Policy: retry.Policy{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   cfg.RetryBaseDelay,
			Retryable:   retryablePredicate(kind),
		},
		Label:     label,
		Logger:    c.log,
		Sleep:     c.sleep,
		Exhausted: exhaustedError,
	}
}

// call issues one retried API call and decodes the response into T. Errors
// are wrapped as GovernanceErrors of the given kind before the retry
// predicate sees them.
func call[T any](ctx context.Context, c *Client, kind ErrorKind, label, method, path string, body any) (*T, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return retry.Do(ctx, c.retryConfig(label, kind), func(ctx context.Context) (*T, error) {
		var out T
		if err := c.api.Do(ctx, method, path, body, &out); err != nil {
			return nil, wrapAs(kind, err)
		}
		return &out, nil
	})
}

// callNoResult is call for endpoints whose response body is discarded.
func callNoResult(ctx context.Context, c *Client, kind ErrorKind, label, method, path string, body any) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	_, err := retry.Do(ctx, c.retryConfig(label, kind), func(ctx context.Context) (struct{}, error) {
		if err := c.api.Do(ctx, method, path, body, nil); err != nil {
			return struct{}{}, wrapAs(kind, err)
		}
		return struct{}{}, nil
	})
	return err
}
