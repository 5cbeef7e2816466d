package mechauth

import (
	"errors"
	"time"
)

// Config defines the engine configuration. Instances are configured during
// initialization and treated as immutable after [Builder.Build].
type Config struct {
	Owner    OwnerConfig
	JWT      JWTConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// OwnerConfig identifies the single privileged principal. The password hash
// is precomputed with bcrypt (see cmd/mechauth-hash); the engine never sees
// or stores the plaintext.
type OwnerConfig struct {
	Name         string
	PasswordHash string
}

// JWTConfig carries the signing secret and token lifetimes.
type JWTConfig struct {
	SigningSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// ThrottleConfig defines the login lockout policy: MaxAttempts consecutive
// failures from one origin lock that origin for LockoutDuration.
type ThrottleConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	RedisPrefix     string
}

// AuditConfig defines a public type used by mechauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by mechauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Throttle: ThrottleConfig{
			MaxAttempts:     5,
			LockoutDuration: 15 * time.Minute,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.SigningSecret = cloneBytes(cfg.JWT.SigningSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for values the engine cannot operate
// with. It is called by [Builder.Build].
func (c Config) Validate() error {
	if c.Owner.Name == "" {
		return errors.New("owner name required")
	}
	if c.Owner.PasswordHash == "" {
		return errors.New("owner password hash required")
	}
	if len(c.JWT.SigningSecret) < 32 {
		return errors.New("signing secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Throttle.MaxAttempts <= 0 {
		return errors.New("throttle max attempts must be positive")
	}
	if c.Throttle.LockoutDuration <= 0 {
		return errors.New("throttle lockout duration must be positive")
	}
	return nil
}
