package goAudit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "GOAUDIT_"

// Config controls the Emitter and its delivery pipeline. Documents
// themselves are configured with Options; DocumentOptions derives them from
// the Document section.
type Config struct {
	Document DocumentConfig `envPrefix:"DOCUMENT_"`
	Dispatch DispatchConfig `envPrefix:"DISPATCH_"`
	Delivery DeliveryConfig `envPrefix:"DELIVERY_"`
	Stream   StreamConfig   `envPrefix:"STREAM_"`
	Seal     SealConfig     `envPrefix:"SEAL_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
}

/*
====================================
DOCUMENT CONFIG
====================================
*/

// DocumentConfig sets the Options applied by Emitter.NewObject and
// Emitter.NewArray.
type DocumentConfig struct {
	AllowInvalidUTF8 bool `env:"ALLOW_INVALID_UTF8"`
	// Location is an IANA zone name for timestamps. Empty means local time.
	Location string `env:"LOCATION"`
}

/*
====================================
DELIVERY CONFIG
====================================
*/

// DispatchConfig enables the async dispatcher between Send and the sink.
type DispatchConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// DeliveryConfig applies to every sink call.
type DeliveryConfig struct {
	DefaultTopic string        `env:"DEFAULT_TOPIC"`
	Timeout      time.Duration `env:"TIMEOUT"`
}

// StreamConfig is used when the Emitter is built WithRedis.
type StreamConfig struct {
	Prefix  string `env:"PREFIX"`
	MaxLen  int64  `env:"MAX_LEN"`
	Publish bool   `env:"PUBLISH"`
}

// SealConfig wraps the sink so payloads are delivered as signed tokens.
type SealConfig struct {
	Enabled       bool   `env:"ENABLED"`
	SigningMethod string `env:"SIGNING_METHOD"` // "ed25519" (default), "hs256" optional
	Issuer        string `env:"ISSUER"`
	KeyID         string `env:"KEY_ID"`
	PrivateKey    []byte
	PublicKey     []byte
}

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"ENABLE_LATENCY_HISTOGRAMS"`
}

func defaultConfig() Config {
	return Config{
		Dispatch: DispatchConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Delivery: DeliveryConfig{
			DefaultTopic: "audit",
			Timeout:      5 * time.Second,
		},
		Stream: StreamConfig{
			Prefix: "audit",
			MaxLen: 100000,
		},
		Seal: SealConfig{
			SigningMethod: "ed25519",
			Issuer:        "goaudit",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

// LoadConfig overlays GOAUDIT_* environment variables on the defaults.
// Keys for sealing are never read from the environment.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Seal.PrivateKey = cloneBytes(cfg.Seal.PrivateKey)
	out.Seal.PublicKey = cloneBytes(cfg.Seal.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// DocumentOptions converts the Document section into Options. The Location
// must already have passed Validate.
func (c *Config) DocumentOptions() []Option {
	opts := []Option{WithInvalidUTF8(c.Document.AllowInvalidUTF8)}
	if c.Document.Location != "" {
		if loc, err := time.LoadLocation(c.Document.Location); err == nil {
			opts = append(opts, WithLocation(loc))
		}
	}
	return opts
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	// Document
	if c.Document.Location != "" {
		if _, err := time.LoadLocation(c.Document.Location); err != nil {
			return fmt.Errorf("Document Location %q is not a known zone: %w", c.Document.Location, err)
		}
	}

	// Dispatch
	if c.Dispatch.Enabled && c.Dispatch.BufferSize <= 0 {
		return errors.New("Dispatch BufferSize must be > 0 when dispatch is enabled")
	}

	// Delivery
	if strings.TrimSpace(c.Delivery.DefaultTopic) == "" {
		return errors.New("Delivery DefaultTopic must not be empty")
	}
	if c.Delivery.Timeout < 0 {
		return errors.New("Delivery Timeout must be >= 0")
	}

	// Stream
	if strings.TrimSpace(c.Stream.Prefix) == "" {
		return errors.New("Stream Prefix must not be empty")
	}
	if strings.ContainsAny(c.Stream.Prefix, " \t\n") {
		return errors.New("Stream Prefix must not contain whitespace")
	}
	if c.Stream.MaxLen < 0 {
		return errors.New("Stream MaxLen must be >= 0")
	}

	// Seal
	if c.Seal.Enabled {
		switch c.Seal.SigningMethod {
		case "ed25519":
			if len(c.Seal.PrivateKey) == 0 {
				return errors.New("ed25519 requires Seal PrivateKey")
			}
		case "hs256":
			if len(c.Seal.PrivateKey) < 32 {
				return errors.New("hs256 requires a Seal PrivateKey of at least 32 bytes")
			}
		default:
			return errors.New("unsupported Seal signing method")
		}
		if strings.TrimSpace(c.Seal.Issuer) == "" {
			return errors.New("Seal Issuer must not be empty when sealing is enabled")
		}
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintSeverity ranks configuration warnings.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is a valid but questionable setting.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

type LintResult []LintWarning

func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns warnings at or above floor.
func (r LintResult) BySeverity(floor LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= floor {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins warnings at or above floor into one error, or returns nil.
func (r LintResult) AsError(floor LintSeverity) error {
	matched := r.BySeverity(floor)
	if len(matched) == 0 {
		return nil
	}
	parts := make([]string, 0, len(matched))
	for _, w := range matched {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return errors.New("config lint: " + strings.Join(parts, "; "))
}

// Lint inspects a configuration that passes Validate for settings that
// lose events or weaken the audit trail.
func (c *Config) Lint() LintResult {
	var ws LintResult

	if !c.Dispatch.Enabled {
		ws = append(ws, LintWarning{
			Code:     "dispatch_disabled",
			Severity: LintInfo,
			Message:  "Send delivers synchronously on the caller's goroutine",
		})
	}
	if c.Dispatch.Enabled && c.Dispatch.DropIfFull {
		ws = append(ws, LintWarning{
			Code:     "drop_if_full",
			Severity: LintWarn,
			Message:  "events are dropped when the dispatch buffer is full",
		})
	}
	if c.Delivery.Timeout == 0 {
		ws = append(ws, LintWarning{
			Code:     "delivery_unbounded",
			Severity: LintWarn,
			Message:  "sink calls have no timeout",
		})
	}
	if c.Stream.MaxLen == 0 {
		ws = append(ws, LintWarning{
			Code:     "stream_unbounded",
			Severity: LintWarn,
			Message:  "redis streams are never trimmed",
		})
	}
	if c.Seal.Enabled && c.Seal.SigningMethod == "hs256" {
		ws = append(ws, LintWarning{
			Code:     "seal_hs256",
			Severity: LintInfo,
			Message:  "verifiers need the signing secret",
		})
	}
	if c.Document.AllowInvalidUTF8 {
		ws = append(ws, LintWarning{
			Code:     "invalid_utf8_allowed",
			Severity: LintHigh,
			Message:  "invalid utf-8 is rewritten instead of rejected, events may not match their source",
		})
	}
	if !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:     "metrics_disabled",
			Severity: LintInfo,
			Message:  "rejected and failed deliveries are not counted",
		})
	}

	return ws
}
