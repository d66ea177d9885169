package aegisgate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		APIKey:         "key",
		OrgID:          "org",
		BaseURL:        "https://api.aegisgate.io",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
	}
}

func TestConfigValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().validate())
}

func TestConfigValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty api key", func(c *Config) { c.APIKey = "  " }, ErrMissingAPIKey},
		{"empty org", func(c *Config) { c.OrgID = "" }, ErrMissingOrgID},
		{"bad url", func(c *Config) { c.BaseURL = "::::" }, ErrInvalidConfig},
		{"url without scheme", func(c *Config) { c.BaseURL = "api.aegisgate.io" }, ErrInvalidConfig},
		{"timeout too small", func(c *Config) { c.Timeout = 999 * time.Millisecond }, ErrInvalidConfig},
		{"timeout too large", func(c *Config) { c.Timeout = 301 * time.Second }, ErrInvalidConfig},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, ErrInvalidConfig},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }, ErrInvalidConfig},
		{"negative base delay", func(c *Config) { c.RetryBaseDelay = -time.Second }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			// Every validation error is a non-retryable config error.
			gerr := requireGovernanceError(t, err)
			assert.Equal(t, KindConfig, gerr.Kind)
			assert.False(t, gerr.Retryable)
		})
	}
}

func TestConfigValidate_BoundaryValues(t *testing.T) {
	cfg := validConfig()
	cfg.Timeout = time.Second
	cfg.MaxRetries = 0
	assert.NoError(t, cfg.validate())

	cfg.Timeout = 5 * time.Minute
	cfg.MaxRetries = 10
	assert.NoError(t, cfg.validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AEGISGATE_API_KEY", "env-key")
	t.Setenv("AEGISGATE_ORG_ID", "env-org")
	t.Setenv("AEGISGATE_BASE_URL", "https://gate.example.com")
	t.Setenv("AEGISGATE_TIMEOUT", "45s")
	t.Setenv("AEGISGATE_MAX_RETRIES", "5")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-org", cfg.OrgID)
	assert.Equal(t, "https://gate.example.com", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay, "unset variables keep their defaults")
}
