package aegisgate

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL        = "https://api.aegisgate.io"
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second

	minTimeout    = time.Second
	maxTimeout    = 5 * time.Minute
	maxMaxRetries = 10

	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 5 * time.Minute
)

// Config holds the client configuration. A Config is captured as an
// immutable snapshot at construction; Reconfigure swaps in a new snapshot
// atomically while in-flight operations keep the one they started with.
type Config struct {
	APIKey         string        `env:"AEGISGATE_API_KEY"`
	OrgID          string        `env:"AEGISGATE_ORG_ID"`
	BaseURL        string        `env:"AEGISGATE_BASE_URL" envDefault:"https://api.aegisgate.io"`
	Timeout        time.Duration `env:"AEGISGATE_TIMEOUT" envDefault:"30s"`
	MaxRetries     int           `env:"AEGISGATE_MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"AEGISGATE_RETRY_BASE_DELAY" envDefault:"1s"`
}

// validate checks the configuration ranges. It is called before any network
// I/O; violations surface as non-retryable config errors.
func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return configError("APIKey must not be empty", ErrMissingAPIKey)
	}
	if strings.TrimSpace(c.OrgID) == "" {
		return configError("OrgID must not be empty", ErrMissingOrgID)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return configError(fmt.Sprintf("BaseURL %q is not a valid URL", c.BaseURL), err)
	}
	if c.Timeout < minTimeout || c.Timeout > maxTimeout {
		return configError(fmt.Sprintf("Timeout %v out of range [%v, %v]", c.Timeout, minTimeout, maxTimeout), nil)
	}
	if c.MaxRetries < 0 || c.MaxRetries > maxMaxRetries {
		return configError(fmt.Sprintf("MaxRetries %d out of range [0, %d]", c.MaxRetries, maxMaxRetries), nil)
	}
	if c.RetryBaseDelay < 0 {
		return configError(fmt.Sprintf("RetryBaseDelay %v must not be negative", c.RetryBaseDelay), nil)
	}
	return nil
}

func configError(msg string, cause error) error {
	return &GovernanceError{
		Kind:      KindConfig,
		Message:   msg,
		Retryable: false,
		Err:       cause,
	}
}

// clientConfig aggregates the Config snapshot with construction-only knobs.
type clientConfig struct {
	cfg        Config
	logger     zerolog.Logger
	httpClient *http.Client
	skipVerify bool
}

// Option configures the client at construction time.
type Option func(*clientConfig)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.cfg.BaseURL = baseURL
	}
}

// WithTimeout overrides the per-request timeout. Valid range is 1s to 5m.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.cfg.Timeout = timeout
	}
}

// WithMaxRetries sets how many times a failed call is retried after the
// initial attempt. Valid range is 0 to 10.
func WithMaxRetries(retries int) Option {
	return func(c *clientConfig) {
		c.cfg.MaxRetries = retries
	}
}

// WithRetryBaseDelay sets the delay before the first retry; subsequent
// delays double, up to 30s.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *clientConfig) {
		c.cfg.RetryBaseDelay = delay
	}
}

// WithLogger sets the logger used for retry and polling warnings. The
// default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for tests and
// for callers with custom proxy or TLS requirements.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithoutKeyVerification skips the API key verification call during New.
// Intended for tests and offline construction; the first real request will
// still fail on a bad key.
func WithoutKeyVerification() Option {
	return func(c *clientConfig) {
		c.skipVerify = true
	}
}

// ConfigFromEnv builds a Config from AEGISGATE_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, configError("parse environment: "+err.Error(), err)
	}
	return cfg, nil
}
