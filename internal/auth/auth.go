// Package auth validates bearer tokens issued by the account service and
// resolves the tenant and user they were minted for. Token issuance lives
// outside this service; we only consume already-issued credentials.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tillworks/till/internal/tenant"
)

// Claims is the subset of the token payload the engine cares about.
type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseToken validates the signature and expiry of a bearer token and
// returns the tenant and user it identifies.
func ParseToken(tokenStr, secret string) (tenantID, userID uuid.UUID, err error) {
	var claims Claims

	_, err = jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parsing token: %w", err)
	}

	tenantID, err = uuid.Parse(claims.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid tenant_id claim: %w", err)
	}

	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user_id claim: %w", err)
	}

	return tenantID, userID, nil
}

// Middleware rejects requests without a valid bearer token and installs
// the resolved tenant and user into the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			tokenStr, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenStr == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			tenantID, userID, err := ParseToken(tokenStr, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := tenant.NewContext(r.Context(), tenantID)
			ctx = tenant.WithUser(ctx, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
