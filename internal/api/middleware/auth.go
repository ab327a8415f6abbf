package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"travisconnect/internal/config"
	"travisconnect/internal/logger"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// APIKeyContextKey is the context key for the API key
const APIKeyContextKey ContextKey = "api_key"

// AuthMiddleware is an HTTP middleware that validates API keys
type AuthMiddleware struct {
	apiKeys [][]byte
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(cfg config.APIConfig) *AuthMiddleware {
	keys := make([][]byte, 0, len(cfg.Keys))
	for _, key := range cfg.Keys {
		keys = append(keys, []byte(key))
	}
	return &AuthMiddleware{apiKeys: keys}
}

// ValidateAPIKey returns true if the API key is valid
func (am *AuthMiddleware) ValidateAPIKey(apiKey string) bool {
	candidate := []byte(strings.TrimSpace(strings.TrimPrefix(apiKey, "Bearer ")))
	if len(candidate) == 0 {
		return false
	}
	valid := false
	for _, key := range am.apiKeys {
		if subtle.ConstantTimeCompare(candidate, key) == 1 {
			valid = true
		}
	}
	return valid
}

// GetAPIKey extracts the API key from the Authorization header.
// Query parameters are not accepted since they end up in access logs.
func GetAPIKey(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// CallerFromContext returns the API key stored by the auth middleware, masked for logging
func CallerFromContext(ctx context.Context) string {
	apiKey, ok := ctx.Value(APIKeyContextKey).(string)
	if !ok || apiKey == "" {
		return "unknown"
	}
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}

// Middleware returns an HTTP handler that validates API keys
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := GetAPIKey(r)

		if !am.ValidateAPIKey(apiKey) {
			logger.Warn("Invalid API key", "ip", r.RemoteAddr, "path", r.URL.Path, "request_id", GetRequestID(r))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), APIKeyContextKey, strings.TrimSpace(apiKey))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
