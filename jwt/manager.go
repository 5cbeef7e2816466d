package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose discriminates access tokens from refresh tokens. It is embedded in
// the signed claims and checked on every use.
type Purpose string

const (
	// PurposeAccess marks a short-lived token presented on API calls.
	PurposeAccess Purpose = "access"
	// PurposeRefresh marks a longer-lived token exchangeable for a new pair.
	PurposeRefresh Purpose = "refresh"
)

// minSecretLen is the minimum HS256 secret size in bytes.
const minSecretLen = 32

// Config carries the signing material and token lifetimes.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
	Now        func() time.Time
}

// Claims is the signed payload carried by every token issued by a Manager.
type Claims struct {
	Purpose Purpose `json:"typ"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens. It is safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates the configuration and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// TTL returns the configured lifetime for the given purpose.
func (m *Manager) TTL(purpose Purpose) time.Duration {
	if purpose == PurposeRefresh {
		return m.config.RefreshTTL
	}
	return m.config.AccessTTL
}

// Issue signs a token for subject with the given purpose. The caller passes
// the issuance instant so an access+refresh pair minted in one logical
// operation shares a single now snapshot; the expiry is returned alongside
// the compact token.
func (m *Manager) Issue(subject string, purpose Purpose, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(m.TTL(purpose))

	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse verifies the signature and registered claims of a compact token.
// Expired, malformed, tampered, or foreign-algorithm tokens all fail here;
// callers treat any returned error as an invalid token.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.config.Now),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// TypeOf extracts the purpose of a token, swallowing verification errors.
// It exists for diagnostics and type discrimination only and must never feed
// a trust decision; an unverifiable token yields the empty purpose.
func (m *Manager) TypeOf(tokenStr string) Purpose {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return ""
	}
	return claims.Purpose
}
