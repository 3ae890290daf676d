package goAudit

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidateFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "document location valid",
			mutate: func(c *Config) {
				c.Document.Location = "UTC"
			},
			wantValid: true,
		},
		{
			name: "document location invalid",
			mutate: func(c *Config) {
				c.Document.Location = "Mars/Olympus_Mons"
			},
			wantValid: false,
		},
		{
			name: "dispatch buffer zero invalid",
			mutate: func(c *Config) {
				c.Dispatch.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "dispatch buffer zero valid when disabled",
			mutate: func(c *Config) {
				c.Dispatch.Enabled = false
				c.Dispatch.BufferSize = 0
			},
			wantValid: true,
		},
		{
			name: "default topic blank invalid",
			mutate: func(c *Config) {
				c.Delivery.DefaultTopic = "  "
			},
			wantValid: false,
		},
		{
			name: "delivery timeout negative invalid",
			mutate: func(c *Config) {
				c.Delivery.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "delivery timeout zero valid",
			mutate: func(c *Config) {
				c.Delivery.Timeout = 0
			},
			wantValid: true,
		},
		{
			name: "stream prefix with space invalid",
			mutate: func(c *Config) {
				c.Stream.Prefix = "audit events"
			},
			wantValid: false,
		},
		{
			name: "stream max len negative invalid",
			mutate: func(c *Config) {
				c.Stream.MaxLen = -1
			},
			wantValid: false,
		},
		{
			name: "seal hs256 valid",
			mutate: func(c *Config) {
				c.Seal.Enabled = true
				c.Seal.SigningMethod = "hs256"
				c.Seal.PrivateKey = []byte(strings.Repeat("s", 32))
			},
			wantValid: true,
		},
		{
			name: "seal signing invalid",
			mutate: func(c *Config) {
				c.Seal.Enabled = true
				c.Seal.SigningMethod = "rs256"
				c.Seal.PrivateKey = []byte("k")
			},
			wantValid: false,
		},
		{
			name: "seal method ignored when disabled",
			mutate: func(c *Config) {
				c.Seal.SigningMethod = "rs256"
			},
			wantValid: true,
		},
		{
			name: "latency histograms without metrics invalid",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config, got nil")
			}
		})
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("GOAUDIT_DISPATCH_ENABLED", "false")
	t.Setenv("GOAUDIT_DELIVERY_DEFAULT_TOPIC", "dsdbChange")
	t.Setenv("GOAUDIT_DELIVERY_TIMEOUT", "250ms")
	t.Setenv("GOAUDIT_STREAM_MAX_LEN", "42")
	t.Setenv("GOAUDIT_DOCUMENT_LOCATION", "UTC")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dispatch.Enabled {
		t.Fatal("expected dispatch disabled from env")
	}
	if cfg.Delivery.DefaultTopic != "dsdbChange" || cfg.Delivery.Timeout != 250*time.Millisecond {
		t.Fatalf("unexpected delivery config %+v", cfg.Delivery)
	}
	if cfg.Stream.MaxLen != 42 || cfg.Stream.Prefix != "audit" {
		t.Fatalf("expected env overlay on defaults, got %+v", cfg.Stream)
	}
	if cfg.Dispatch.BufferSize != 1024 {
		t.Fatalf("expected default buffer size to survive, got %d", cfg.Dispatch.BufferSize)
	}
}

func TestLoadConfigRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("GOAUDIT_STREAM_MAX_LEN", "lots")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigValidates(t *testing.T) {
	t.Setenv("GOAUDIT_DISPATCH_BUFFER_SIZE", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCloneConfigCopiesKeys(t *testing.T) {
	cfg := defaultConfig()
	cfg.Seal.PrivateKey = []byte("secret")

	clone := cloneConfig(cfg)
	cfg.Seal.PrivateKey[0] = 'X'
	if string(clone.Seal.PrivateKey) != "secret" {
		t.Fatalf("clone shares key storage: %q", clone.Seal.PrivateKey)
	}
}

func TestDocumentOptionsApplyLocation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Document.Location = "UTC"

	fixed := time.Date(2018, 3, 19, 21, 23, 45, 123456000, time.UTC)
	opts := append(cfg.DocumentOptions(), WithClock(func() time.Time { return fixed }))

	d := NewObject(opts...)
	defer d.Release()
	d.AddTimestamp()

	if got := mustSerialize(t, d); got != `{"timestamp":"2018-03-19T21:23:45.123456+0000"}` {
		t.Fatalf("unexpected timestamp document %s", got)
	}
}
