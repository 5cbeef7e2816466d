package mechauth

import (
	"errors"
	"time"

	internalaudit "github.com/mechtrack/mechauth/internal/audit"
	"github.com/mechtrack/mechauth/internal/stores"
	"github.com/mechtrack/mechauth/internal/throttle"
	"github.com/mechtrack/mechauth/jwt"
	"github.com/mechtrack/mechauth/password"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; nothing
// touches a backend until the engine's methods are called.
type Builder struct {
	config Config
	redis  *redis.Client
	clock  func() time.Time

	refreshStore RefreshStore
	throttle     LoginThrottle
	auditSink    AuditSink

	built bool
}

// New returns a Builder carrying the default configuration: 15 minute access
// tokens, 7 day refresh tokens, lockout after 5 failures for 15 minutes.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale. Zero-valued
// policy fields are NOT backfilled with defaults; start from New's config
// when only overriding parts.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the refresh store and login throttle with a shared Redis
// instance, making revocation and lockout visible across server processes.
// Without it both default to in-memory, which is correct for the
// single-instance deployment the engine targets.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithClock overrides the engine's time source. Tests use it to drive
// lockout expiry and token expiry deterministically.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithRefreshStore injects a caller-owned refresh store, overriding the
// default selected by Build.
func (b *Builder) WithRefreshStore(store RefreshStore) *Builder {
	b.refreshStore = store
	return b
}

// WithThrottle injects a caller-owned login throttle, overriding the default
// selected by Build.
func (b *Builder) WithThrottle(t LoginThrottle) *Builder {
	b.throttle = t
	return b
}

// WithAuditSink sets the sink that receives audit events when auditing is
// enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the stores, and returns the
// ready engine. A builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	issuer, err := jwt.NewManager(jwt.Config{
		Secret:     cloneBytes(cfg.JWT.SigningSecret),
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Issuer:     cfg.JWT.Issuer,
		Leeway:     cfg.JWT.Leeway,
		Now:        clock,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewBcrypt(0)
	if err != nil {
		return nil, err
	}

	refreshStore := b.refreshStore
	if refreshStore == nil {
		if b.redis != nil {
			refreshStore = stores.NewRedis(b.redis, "", clock)
		} else {
			refreshStore = stores.NewMemory()
		}
	}

	loginThrottle := b.throttle
	if loginThrottle == nil {
		throttleCfg := throttle.Config{
			MaxAttempts:     cfg.Throttle.MaxAttempts,
			LockoutDuration: cfg.Throttle.LockoutDuration,
			Now:             clock,
		}
		if b.redis != nil {
			loginThrottle = throttle.NewRedis(b.redis, cfg.Throttle.RedisPrefix, throttleCfg)
		} else {
			loginThrottle = throttle.NewMemory(throttleCfg)
		}
	}

	engine := &Engine{
		config:       cfg,
		issuer:       issuer,
		hasher:       hasher,
		refreshStore: refreshStore,
		throttle:     loginThrottle,
		metrics:      NewMetrics(cfg.Metrics),
		now:          clock,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return engine, nil
}
