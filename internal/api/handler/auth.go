// internal/api/handler/auth.go
package handler

import (
	"context"
	"net/http"
	"strings"

	"astrochat/internal/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Authenticator resolves the Authorization bearer token on every request and
// stores the resulting identity in the request context. Requests without a
// resolvable credential are rejected with 401.
func Authenticator(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"invalid credential"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom extracts the authenticated identity stored by Authenticator.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(auth.Identity)
	return identity, ok
}
