package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func cashier() session.Session {
	return session.Session{UserID: 3, ClientID: 10, Role: session.RoleCashier, Email: "c@example.com"}
}

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier(secret)

	token, err := v.Sign(cashier(), time.Hour)
	require.NoError(t, err)

	s, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, cashier(), s)
}

func TestVerify_Rejects(t *testing.T) {
	v := NewVerifier(secret)

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)

	foreign, err := NewVerifier("other").Sign(cashier(), time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Sign(cashier(), -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noTenant, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   1,
		"role": "admin",
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = v.Verify(noTenant)
	assert.ErrorIs(t, err, ErrNoTenant)
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(secret)
	token, err := v.Sign(cashier(), time.Hour)
	require.NoError(t, err)

	var seen session.Session
	h := v.Middleware(RequireRoles(session.RoleCashier, session.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = SessionFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
	))

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(10), seen.ClientID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRoles_Forbidden(t *testing.T) {
	v := NewVerifier(secret)
	kitchen := cashier()
	kitchen.Role = session.RoleKitchen
	token, err := v.Sign(kitchen, time.Hour)
	require.NoError(t, err)

	h := v.Middleware(RequireRoles(session.RoleCashier, session.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	))

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Insufficient permissions"}`, rec.Body.String())
}
