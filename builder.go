package goAudit

import (
	"errors"
	"io"
	"log/slog"

	"github.com/MrEthical07/goAudit/internal/audit"
	"github.com/MrEthical07/goAudit/seal"
	"github.com/MrEthical07/goAudit/stream"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Emitter. A Builder is single use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	sink   Sink
	logger *slog.Logger

	built bool
}

// New returns a Builder starting from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSink delivers events to sink. It cannot be combined with WithRedis.
func (b *Builder) WithSink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// WithRedis delivers events to Redis streams keyed "<Stream.Prefix>:<topic>".
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger sets the logger for rejected events, delivery failures, and
// LogJSON/LogText output. Without one the Emitter logs nothing.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and starts the dispatcher when enabled.
func (b *Builder) Build() (*Emitter, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- SINK --------
	var sink Sink
	switch {
	case b.sink != nil && b.redis != nil:
		return nil, errors.New("sink and redis client are mutually exclusive")
	case b.sink != nil:
		sink = b.sink
	case b.redis != nil:
		sink = stream.NewRedisSink(b.redis, cfg.Stream.Prefix, cfg.Stream.MaxLen, cfg.Stream.Publish)
	default:
		return nil, errors.New("sink or redis client required")
	}

	// -------- SEAL --------
	if cfg.Seal.Enabled {
		sealer, err := seal.NewSealer(seal.Config{
			SigningMethod: seal.SigningMethod(cfg.Seal.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Seal.PrivateKey),
			PublicKey:     cloneBytes(cfg.Seal.PublicKey),
			Issuer:        cfg.Seal.Issuer,
			KeyID:         cfg.Seal.KeyID,
		})
		if err != nil {
			return nil, err
		}
		sink = seal.NewSink(sealer, sink)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	metrics := NewMetrics(cfg.Metrics)

	emitter := &Emitter{
		config:  cfg,
		docOpts: cfg.DocumentOptions(),
		sink:    instrumentedSink{next: sink, metrics: metrics},
		logger:  logger,
		metrics: metrics,
	}
	emitter.dispatcher = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Dispatch.Enabled,
		BufferSize: cfg.Dispatch.BufferSize,
		DropIfFull: cfg.Dispatch.DropIfFull,
		Timeout:    cfg.Delivery.Timeout,
	}, emitter.sink, emitter.deliveryFailed)

	b.built = true

	return emitter, nil
}
