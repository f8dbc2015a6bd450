package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes a JSON response with the given status code. It marshals
// first so a failed encoding never produces a partial body after headers.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes a {"message": ...} error body. Internal detail never
// travels on this path; callers pass caller-safe messages only.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}
