package goAset

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/mansetdig/goAset/backend"
)

// Config defines the Manager's tunables. Every section has a compiled-in
// default from [DefaultConfig]; [LoadConfig] overlays GOASET_* environment
// variables on top.
type Config struct {
	Backend BackendConfig `envPrefix:"BACKEND_"`
	Codec   CodecConfig   `envPrefix:"CODEC_"`
	Refresh RefreshConfig `envPrefix:"REFRESH_"`
	Session SessionConfig `envPrefix:"SESSION_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig locates the asset-lending API.
type BackendConfig struct {
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT"`
	// RefreshStyle is "path" (POST /auth/refresh/{token}) or "body"
	// (POST /auth/refresh with a JSON body).
	RefreshStyle string `env:"REFRESH_STYLE"`
}

/*
====================================
CODEC CONFIG
====================================
*/

// DefaultCodecKey obscures stored credentials. It is not a secret.
const DefaultCodecKey = "manset-dig-session-obfuscation"

// CodecConfig controls at-rest obfuscation of stored credentials.
type CodecConfig struct {
	Key string `env:"KEY"`
	// EncodeRefreshToken stores the refresh credential through the codec
	// too. When false it is stored as issued.
	EncodeRefreshToken bool `env:"ENCODE_REFRESH_TOKEN"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the background refresh loop.
type RefreshConfig struct {
	Interval time.Duration `env:"INTERVAL"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis-backed store built by the CLI.
type SessionConfig struct {
	RedisPrefix string        `env:"REDIS_PREFIX"`
	TabTTL      time.Duration `env:"TAB_TTL"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls asynchronous session event delivery.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the compiled-in configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:      backend.DefaultBaseURL,
			Timeout:      15 * time.Second,
			RefreshStyle: string(backend.RefreshInPath),
		},
		Codec: CodecConfig{
			Key:                DefaultCodecKey,
			EncodeRefreshToken: true,
		},
		Refresh: RefreshConfig{
			Interval: 15 * time.Minute,
		},
		Session: SessionConfig{
			RedisPrefix: "goaset",
			TabTTL:      12 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Backend
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("Backend BaseURL must be set")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Backend BaseURL must be an absolute http(s) URL")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("Backend Timeout must be > 0")
	}
	switch backend.RefreshStyle(c.Backend.RefreshStyle) {
	case backend.RefreshInPath, backend.RefreshInBody:
	default:
		return errors.New("Backend RefreshStyle must be \"path\" or \"body\"")
	}

	// Codec
	if c.Codec.Key == "" {
		return errors.New("Codec Key must be set")
	}

	// Refresh
	if c.Refresh.Interval <= 0 {
		return errors.New("Refresh Interval must be > 0")
	}

	// Session
	if c.Session.TabTTL < 0 {
		return errors.New("Session TabTTL must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}
	return nil
}
