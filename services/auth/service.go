package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/webshop/services"
	"go.uber.org/zap"
)

// ErrPrincipalNotFound is returned by UserLookup when no account matches the subject
var ErrPrincipalNotFound = errors.New("principal not found")

// Principal is an authenticated identity and its permission labels
type Principal struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the principal carries role
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Account is a principal together with its stored credential hash
type Account struct {
	Principal
	PasswordHash string
}

// UserLookup resolves accounts by their subject key (the e-mail address)
type UserLookup interface {
	FindBySubject(ctx context.Context, subject string) (*Account, error)
}

// EventRecorder receives the outcome of each authentication operation
type EventRecorder interface {
	RecordAuthEvent(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthEvent(string, string) {}

// Credentials is a login request
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is returned by login, refresh and rotate
type TokenPair struct {
	Type         string `json:"type"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

const (
	opLogin   = "login"
	opRefresh = "refresh"
	opRotate  = "rotate"
)

// Service issues token pairs and implements the refresh and rotation protocols
type Service struct {
	users    UserLookup
	verifier CredentialVerifier
	codec    *TokenCodec
	registry RefreshTokenRegistry
	recorder EventRecorder
	logger   *zap.Logger
}

// NewService creates a new authentication service
func NewService(users UserLookup, verifier CredentialVerifier, codec *TokenCodec, registry RefreshTokenRegistry, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		verifier: verifier,
		codec:    codec,
		registry: registry,
		recorder: nopRecorder{},
		logger:   logger,
	}
}

// WithRecorder sets the recorder for authentication outcomes
func (s *Service) WithRecorder(r EventRecorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Login verifies credentials and issues an access and refresh token.
// The refresh token replaces any previous one of the same subject.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	account, err := s.users.FindBySubject(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			s.recorder.RecordAuthEvent(opLogin, "unknown_user")
			return nil, services.ErrUserNotFound
		}
		s.recorder.RecordAuthEvent(opLogin, "error")
		return nil, services.ErrInternal.Wrap(fmt.Errorf("resolving account: %w", err))
	}

	if !s.verifier.Matches(creds.Password, account.PasswordHash) {
		s.logger.Info("login rejected", zap.String("subject", account.Subject))
		s.recorder.RecordAuthEvent(opLogin, "invalid_credentials")
		return nil, services.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, &account.Principal)
	if err != nil {
		s.recorder.RecordAuthEvent(opLogin, "error")
		return nil, err
	}

	s.logger.Info("login succeeded", zap.String("subject", account.Subject))
	s.recorder.RecordAuthEvent(opLogin, "success")
	return pair, nil
}

// RefreshAccessToken mints a new access token for a live refresh token.
// The refresh token itself is returned unchanged.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	principal, err := s.verifyRefresh(ctx, opRefresh, refreshToken)
	if err != nil {
		return nil, err
	}

	access, err := s.codec.MintAccess(principal.Subject, principal.Roles)
	if err != nil {
		s.recorder.RecordAuthEvent(opRefresh, "error")
		return nil, services.ErrInternal.Wrap(err)
	}

	s.recorder.RecordAuthEvent(opRefresh, "success")
	return &TokenPair{Type: "Bearer", AccessToken: access, RefreshToken: refreshToken}, nil
}

// RotateRefreshToken mints a new access token and a new refresh token, replacing
// the registered one. The presented token is unusable afterwards.
func (s *Service) RotateRefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	principal, err := s.verifyRefresh(ctx, opRotate, refreshToken)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, principal)
	if err != nil {
		s.recorder.RecordAuthEvent(opRotate, "error")
		return nil, err
	}

	s.logger.Debug("refresh token rotated", zap.String("subject", principal.Subject))
	s.recorder.RecordAuthEvent(opRotate, "success")
	return pair, nil
}

// verifyRefresh validates refreshToken against the codec and the registry and
// re-resolves the principal. Every verification failure becomes ErrInvalidToken.
func (s *Service) verifyRefresh(ctx context.Context, op, refreshToken string) (*Principal, error) {
	claims, err := s.codec.ParseAndVerify(KindRefresh, refreshToken)
	if err != nil {
		return nil, s.rejectToken(op, "verification failed", err)
	}

	stored, ok, err := s.registry.Get(ctx, claims.Subject)
	if err != nil {
		s.recorder.RecordAuthEvent(op, "error")
		return nil, services.ErrInternal.Wrap(err)
	}
	if !ok {
		return nil, s.rejectToken(op, "no registered refresh token", nil)
	}
	if stored != refreshToken {
		return nil, s.rejectToken(op, "refresh token superseded", nil)
	}

	account, err := s.users.FindBySubject(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, s.rejectToken(op, "subject no longer exists", nil)
		}
		s.recorder.RecordAuthEvent(op, "error")
		return nil, services.ErrInternal.Wrap(err)
	}

	return &account.Principal, nil
}

func (s *Service) rejectToken(op, reason string, cause error) error {
	s.logger.Debug("refresh token rejected",
		zap.String("operation", op),
		zap.String("reason", reason),
		zap.NamedError("cause", cause))
	s.recorder.RecordAuthEvent(op, "invalid_token")
	return services.ErrInvalidToken
}

func (s *Service) issuePair(ctx context.Context, p *Principal) (*TokenPair, error) {
	access, err := s.codec.MintAccess(p.Subject, p.Roles)
	if err != nil {
		return nil, services.ErrInternal.Wrap(err)
	}
	refresh, err := s.codec.MintRefresh(p.Subject, p.Roles)
	if err != nil {
		return nil, services.ErrInternal.Wrap(err)
	}
	if err := s.registry.Put(ctx, p.Subject, refresh); err != nil {
		return nil, services.ErrInternal.Wrap(err)
	}
	return &TokenPair{Type: "Bearer", AccessToken: access, RefreshToken: refresh}, nil
}
