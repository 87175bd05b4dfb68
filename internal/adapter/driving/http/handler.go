package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/userpanel/internal/application"
)

// Handler is the HTTP driving adapter that serves the REST API. It binds
// protocol requests to service operations and holds no business logic.
type Handler struct {
	svc    *application.UserService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(svc *application.UserService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request-id, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /resources", h.CreateUser)
	mux.HandleFunc("GET /resources", h.ListUsers)
	mux.HandleFunc("GET /resources/search", h.SearchUsers)
	mux.HandleFunc("GET /resources/{id}", h.GetUser)
	mux.HandleFunc("GET /resources/email/{email}", h.GetUserByEmail)
	mux.HandleFunc("GET /resources/exists/{email}", h.UserExists)
	mux.HandleFunc("PUT /resources/{id}", h.UpdateUser)
	mux.HandleFunc("DELETE /resources/{id}", h.DeleteUser)
	mux.HandleFunc("GET /healthz", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// CreateUser creates a new user from the request body.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeUserInput(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(view))
}

// GetUser returns a single user by id.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(view))
}

// GetUserByEmail returns a single user by email.
func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(view))
}

// ListUsers returns all users in insertion order.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(views))
}

// SearchUsers returns users whose name contains the "name" query parameter,
// case-insensitively. An empty parameter matches every user.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.SearchByNameContains(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(views))
}

// UpdateUser replaces the mutable attributes of an existing user.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	in, ok := h.decodeUserInput(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(view))
}

// DeleteUser removes a user permanently.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UserExists reports whether a user holds the given email. The body is a
// bare JSON boolean.
func (h *Handler) UserExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.ExistsByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, exists)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeUserInput decodes the request body into the input projection. The
// decode fails closed: unknown fields, trailing data, and invalid JSON all
// yield a 400 malformed_request response.
func (h *Handler) decodeUserInput(w http.ResponseWriter, r *http.Request) (application.UserInput, bool) {
	var req UserRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedRequest, "invalid request body")
		return application.UserInput{}, false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeMalformedRequest, "invalid request body")
		return application.UserInput{}, false
	}

	return application.UserInput{Name: req.Name, Email: req.Email}, true
}

// pathID parses the {id} path value. A non-numeric id is a malformed request.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
