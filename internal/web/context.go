package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/talent/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to ctx so service logs can
// attribute changes to a client.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r)) // RemoteAddr already resolved by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// clientMetadata applies WithRequestMetadata to every request.
func clientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}
