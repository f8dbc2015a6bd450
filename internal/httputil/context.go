package httputil

import (
	"context"
	"net/http"
)

// contextKey is private so no other package can collide with our keys.
type contextKey string

// userIDKey carries the authenticated subject set by the auth middleware.
const userIDKey contextKey = "userID"

// WithUserID returns a copy of the request whose context carries the
// authenticated user id.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the authenticated user id, or the empty string when the
// request never passed authentication.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
