// Package auth verifies session tokens and enforces staff roles.
// Tokens are issued elsewhere; this service only checks them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/session"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("access token required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoTenant     = errors.New("user is not linked to a client")
)

type ctxKey struct{}

type claims struct {
	ID       int64  `json:"id"`
	Role     string `json:"role"`
	ClientID *int64 `json:"client_id"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 session tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// MustNewVerifier reads the secret from JWT_SECRET.
func MustNewVerifier() *Verifier {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}

	return NewVerifier(secret)
}

// Verify parses the token and returns the session it carries.
func (v *Verifier) Verify(token string) (session.Session, error) {
	if token == "" {
		return session.Session{}, ErrMissingToken
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.ClientID == nil || *c.ClientID == 0 {
		return session.Session{}, ErrNoTenant
	}

	return session.Session{
		UserID:   c.ID,
		ClientID: *c.ClientID,
		Role:     session.Role(c.Role),
		Email:    c.Email,
	}, nil
}

// Sign issues a token for s. Used by tests and local tooling.
func (v *Verifier) Sign(s session.Session, ttl time.Duration) (string, error) {
	clientID := s.ClientID
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:       s.UserID,
		Role:     string(s.Role),
		ClientID: &clientID,
		Email:    s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(v.secret)
}

// TokenFromRequest reads a bearer token from the Authorization header or the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a valid session.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := v.Verify(TokenFromRequest(r))
		switch {
		case errors.Is(err, ErrNoTenant):
			response.Error(w, http.StatusForbidden, ErrNoTenant.Error())

			return
		case errors.Is(err, ErrMissingToken):
			response.Error(w, http.StatusUnauthorized, ErrMissingToken.Error())

			return
		case err != nil:
			response.Error(w, http.StatusUnauthorized, ErrInvalidToken.Error())

			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireRoles lets through only sessions holding one of roles.
func RequireRoles(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessionFromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, ErrMissingToken.Error())

				return
			}
			if !s.HasRole(roles...) {
				response.Error(w, http.StatusForbidden, "Insufficient permissions")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(session.Session)

	return s, ok
}
