package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/auth"
	"github.com/tillworks/till/internal/tenant"
)

const secret = "test-secret"

func signToken(t *testing.T, tenantID, userID string, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		TenantID: tenantID,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestParseToken(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("Valid", func(t *testing.T) {
		tokenStr := signToken(t, tenantID.String(), userID.String(), secret)

		gotTenant, gotUser, err := auth.ParseToken(tokenStr, secret)

		require.NoError(t, err)
		assert.Equal(t, tenantID, gotTenant)
		assert.Equal(t, userID, gotUser)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		tokenStr := signToken(t, tenantID.String(), userID.String(), "other-secret")

		_, _, err := auth.ParseToken(tokenStr, secret)

		assert.Error(t, err)
	})

	t.Run("MalformedTenantClaim", func(t *testing.T) {
		tokenStr := signToken(t, "not-a-uuid", userID.String(), secret)

		_, _, err := auth.ParseToken(tokenStr, secret)

		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant, ok := tenant.FromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, tenantID, gotTenant)

		gotUser, ok := tenant.UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, userID, gotUser)

		w.WriteHeader(http.StatusNoContent)
	})

	handler := auth.Middleware(secret)(next)

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, tenantID.String(), userID.String(), secret))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nonsense")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
