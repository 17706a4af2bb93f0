// Package contexthelpers carries per-request state from middleware to handlers and the training service.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey int

const (
	userIDKey contextKey = iota
	currentPathKey
	cspNonceKey
)

func value[T any](ctx context.Context, key contextKey) T {
	v, _ := ctx.Value(key).(T)
	return v
}

// WithUserID binds an account to ctx. Account IDs start from 1 so zero means guest.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// AuthenticateContext marks the request as belonging to the given account.
func AuthenticateContext(r *http.Request, userID int) *http.Request {
	return r.WithContext(WithUserID(r.Context(), userID))
}

// AuthenticatedUserID returns the account ID bound to the session or 0 for guests.
func AuthenticatedUserID(ctx context.Context) int {
	return value[int](ctx, userIDKey)
}

func IsAuthenticated(ctx context.Context) bool {
	return AuthenticatedUserID(ctx) > 0
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentPathKey, currentPath))
}

func CurrentPath(ctx context.Context) string {
	return value[string](ctx, currentPathKey)
}

// SetCSPNonce stores the nonce that inline scripts and styles of this response must carry.
func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), cspNonceKey, nonce))
}

func CSPNonce(ctx context.Context) string {
	return value[string](ctx, cspNonceKey)
}
