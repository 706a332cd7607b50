package httpmw

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const ctxKeyUsername ctxKey = "username"

// TokenValidator resolves a bearer token to a username. Satisfied by the
// auth service; the interface keeps this package off the service import.
type TokenValidator interface {
	ValidateToken(tokenString string) (string, error)
}

// Auth requires a valid bearer token and puts the username on the context.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			username, err := validator.ValidateToken(strings.TrimSpace(auth[7:]))
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUsername, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UsernameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUsername).(string); ok {
		return v
	}
	return ""
}
