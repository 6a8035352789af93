package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformedToken is returned when the token envelope cannot be decoded
	ErrMalformedToken = errors.New("malformed token")

	// ErrBadSignature is returned when the signature does not match the kind's secret
	ErrBadSignature = errors.New("bad token signature")

	// ErrTokenExpired is returned when the token is past its expiry
	ErrTokenExpired = errors.New("token expired")
)

// TokenKind distinguishes access tokens from refresh tokens
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenClaims is the payload carried by a signed token
type TokenClaims struct {
	Subject   string
	Roles     []string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// envelope is the JWT representation of TokenClaims
type envelope struct {
	jwt.RegisteredClaims
	Roles []string  `json:"roles,omitempty"`
	Kind  TokenKind `json:"kind"`
}

// CodecConfig configures a TokenCodec
type CodecConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenCodec mints and verifies HS256 tokens with a separate secret per kind
type TokenCodec struct {
	secrets map[TokenKind][]byte
	ttls    map[TokenKind]time.Duration
	issuer  string
	now     func() time.Time
}

// CodecOption customizes a TokenCodec
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuing and verifying tokens
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a TokenCodec
func NewTokenCodec(cfg CodecConfig, opts ...CodecOption) (*TokenCodec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token codec: both signing secrets are required")
	}

	c := &TokenCodec{
		secrets: map[TokenKind][]byte{
			KindAccess:  cfg.AccessSecret,
			KindRefresh: cfg.RefreshSecret,
		},
		ttls: map[TokenKind]time.Duration{
			KindAccess:  cfg.AccessTTL,
			KindRefresh: cfg.RefreshTTL,
		},
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured lifetime for kind
func (c *TokenCodec) TTL(kind TokenKind) time.Duration {
	return c.ttls[kind]
}

// Mint builds and signs a token of the given kind.
func (c *TokenCodec) Mint(kind TokenKind, subject string, roles []string, ttl time.Duration) (string, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := c.now()
	claims := envelope{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Roles: slices.Clone(roles),
		Kind:  kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", kind, err)
	}
	return signed, nil
}

// MintAccess mints an access token with the configured access TTL
func (c *TokenCodec) MintAccess(subject string, roles []string) (string, error) {
	return c.Mint(KindAccess, subject, roles, c.ttls[KindAccess])
}

// MintRefresh mints a refresh token with the configured refresh TTL
func (c *TokenCodec) MintRefresh(subject string, roles []string) (string, error) {
	return c.Mint(KindRefresh, subject, roles, c.ttls[KindRefresh])
}

// ParseAndVerify decodes token, checks its signature against the secret of kind
// and its expiry. It does not consult the refresh registry.
func (c *TokenCodec) ParseAndVerify(kind TokenKind, token string) (*TokenClaims, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}

	// Expiry is checked below against the injected clock
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &envelope{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrBadSignature, kind, claims.Kind)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing required claims", ErrMalformedToken)
	}
	if !c.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		Roles:     claims.Roles,
		Kind:      claims.Kind,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
