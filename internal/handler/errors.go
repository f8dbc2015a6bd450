package handler

import (
	"errors"
	"net/http"

	"chatgate/internal/domain"
	"chatgate/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Bodies carry fixed,
// caller-safe messages; upstream detail stays in the service logs.
func handleError(w http.ResponseWriter, err error) {
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, "Conversation was updated concurrently, please retry")
	case errors.As(err, &upstreamErr):
		httputil.RespondError(w, http.StatusInternalServerError, "AI service is unavailable")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
