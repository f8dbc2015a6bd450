package handler

import (
	"fmt"
	"net/http"

	"chatgate/internal/httputil"
)

// PathParam extracts a path parameter, responding with 400 when it is
// missing. The second return reports whether the caller may proceed.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", label))
		return "", false
	}
	return value, true
}
