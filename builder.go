package routegate

import (
	"fmt"

	internalaudit "github.com/shopfront/routegate/internal/audit"
	internalmetrics "github.com/shopfront/routegate/internal/metrics"
	"github.com/shopfront/routegate/jwt"
	"github.com/shopfront/routegate/session"

	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Builders are single-use: Build returns
// [ErrBuilderUsed] on a second call.
type Builder struct {
	config Config
	redis  *redis.Client

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a clone of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches the Redis client backing the durable token store.
// Optional: without it, durable presence always reads absent.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink attaches the sink receiving decision audit events.
// Effective only when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles decision metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the edge-evaluation latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config: cloneConfig(b.config),
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled:       b.config.Metrics.Enabled,
			EnableLatency: b.config.Metrics.EnableLatencyHistograms,
		}),
	}

	if b.config.Token.Verify {
		manager, err := jwt.NewManager(jwt.Config{
			Method:   b.config.Token.Method,
			Key:      b.config.Token.Key,
			Issuer:   b.config.Token.Issuer,
			Audience: b.config.Token.Audience,
			Leeway:   b.config.Token.Leeway,
		})
		if err != nil {
			return nil, fmt.Errorf("token manager: %w", err)
		}
		e.tokens = manager
	}

	if b.redis != nil {
		e.store = session.NewTokenStore(b.redis, session.StoreConfig{})
	}

	e.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	return e, nil
}
