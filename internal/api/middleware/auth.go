package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const callerKeyContextKey contextKey = "caller_api_key"

// CallerKeyFromContext returns the bearer key the caller presented, or "".
func CallerKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(callerKeyContextKey).(string)
	return key
}

// BearerKey lifts an optional "Authorization: Bearer <key>" header into the
// request context so it can be forwarded to the directory. Requests without
// the header pass through; a malformed header is rejected.
func BearerKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		ctx := context.WithValue(r.Context(), callerKeyContextKey, strings.TrimSpace(parts[1]))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
