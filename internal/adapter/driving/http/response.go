package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ericfisherdev/userpanel/internal/application"
)

// Machine-readable error codes carried in every error body.
const (
	codeMalformedRequest = "malformed_request"
	codeValidationFailed = "validation_failed"
	codeConflict         = "conflict"
	codeNotFound         = "not_found"
	codeStoreUnavailable = "store_unavailable"
	codeInternal         = "internal"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal","error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error body with the given status, code, and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Error: message})
}

// writeServiceError is the single place service error kinds become protocol
// responses: validation 400, conflict 409, not-found 404, store failure 503.
// Anything else is an internal error and is not leaked to the caller.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		fields := make([]fieldErrorResponse, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			fields = append(fields, fieldErrorResponse{Field: v.Field, Reason: v.Reason})
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:   codeValidationFailed,
			Error:  "validation failed",
			Fields: fields,
		})
		return
	}

	var cerr *application.ConflictError
	if errors.As(err, &cerr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:  codeConflict,
			Error: cerr.Error(),
			Fields: []fieldErrorResponse{
				{Field: cerr.Field, Reason: "already in use"},
			},
		})
		return
	}

	var nferr *application.NotFoundError
	if errors.As(err, &nferr) {
		writeError(w, http.StatusNotFound, codeNotFound, nferr.Error())
		return
	}

	var serr *application.StoreUnavailableError
	if errors.As(err, &serr) {
		h.logger.Error("store unavailable", "path", r.URL.Path, "error", serr.Cause)
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "store unavailable")
		return
	}

	h.logger.Error("unexpected error", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Code   string               `json:"code"`
	Error  string               `json:"error"`
	Fields []fieldErrorResponse `json:"fields,omitempty"`
}

// fieldErrorResponse is a per-field reason inside a validation or conflict body.
type fieldErrorResponse struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// UserRequest is the JSON body accepted by the create and update endpoints.
type UserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toUserResponse converts an output projection to its JSON representation.
// Timestamps keep nanosecond precision so consecutive updates stay ordered.
func toUserResponse(v application.UserView) UserResponse {
	return UserResponse{
		ID:        v.ID,
		Name:      v.Name,
		Email:     v.Email,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: v.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toUserResponses(views []application.UserView) []UserResponse {
	resp := make([]UserResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toUserResponse(v))
	}
	return resp
}
