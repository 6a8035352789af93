package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
)

// TokenVerifier verifies a signed token of the given kind
type TokenVerifier interface {
	ParseAndVerify(kind auth.TokenKind, token string) (*auth.TokenClaims, error)
}

// RequestAuthenticator resolves the principal behind a bearer access token.
// It never rejects a request; authorization is left to RequireAuthenticated and RequireRole.
type RequestAuthenticator struct {
	verifier TokenVerifier
	users    auth.UserLookup
	logger   *zap.Logger
}

// NewRequestAuthenticator creates a new RequestAuthenticator
func NewRequestAuthenticator(verifier TokenVerifier, users auth.UserLookup, logger *zap.Logger) *RequestAuthenticator {
	return &RequestAuthenticator{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// Authenticate validates the raw Authorization header value and resolves its principal.
// Roles come from the user store, not from the token.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, rawHeader string) (*auth.Principal, bool) {
	token := parseBearer(rawHeader)
	if token == "" {
		return nil, false
	}

	claims, err := a.verifier.ParseAndVerify(auth.KindAccess, token)
	if err != nil {
		a.logger.Debug("access token rejected",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.Error(err))
		return nil, false
	}

	account, err := a.users.FindBySubject(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, auth.ErrPrincipalNotFound) {
			a.logger.Warn("principal lookup failed",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("subject", claims.Subject),
				zap.Error(err))
		}
		return nil, false
	}

	principal := account.Principal
	return &principal, true
}

// Middleware attaches the principal of a valid bearer token to the request context.
// Requests without one continue anonymous.
func (a *RequestAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		a.logger.Debug("request authenticated",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("subject", principal.Subject))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireAuthenticated rejects anonymous requests with 401
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipalFromContext(r.Context()) == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and principals holding none of roles with 403
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipalFromContext(r.Context())
			if principal == nil {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if principal.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			_ = utils.WriteForbidden(w, "Insufficient permissions")
		})
	}
}

// parseBearer extracts the token from a "Bearer TOKEN" header value
func parseBearer(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
