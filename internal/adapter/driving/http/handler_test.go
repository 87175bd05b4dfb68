package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	memoryadapter "github.com/ericfisherdev/userpanel/internal/adapter/driven/memory"
	httphandler "github.com/ericfisherdev/userpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/userpanel/internal/application"
	"github.com/ericfisherdev/userpanel/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation, standing in for an unreachable store.
type brokenStore struct{}

var errBroken = errors.New("store down")

func (brokenStore) Create(_ context.Context, _ model.User) (model.User, error) {
	return model.User{}, errBroken
}
func (brokenStore) GetByID(_ context.Context, _ int64) (*model.User, error) { return nil, errBroken }
func (brokenStore) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, errBroken
}
func (brokenStore) ListAll(_ context.Context) ([]model.User, error) { return nil, errBroken }
func (brokenStore) Update(_ context.Context, _ model.User) error    { return errBroken }
func (brokenStore) Delete(_ context.Context, _ int64) error         { return errBroken }
func (brokenStore) ExistsByEmail(_ context.Context, _ string) (bool, error) {
	return false, errBroken
}

// errorBody mirrors the JSON error shape of the API.
type errorBody struct {
	Code   string `json:"code"`
	Error  string `json:"error"`
	Fields []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"fields"`
}

type userBody struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// setupMux wires the full pipeline against the in-memory reference store.
func setupMux(t *testing.T) http.Handler {
	t.Helper()
	svc := application.NewUserService(memoryadapter.NewUserRepo(), application.NewMapper())
	h := httphandler.NewHandler(svc, slog.Default())
	return httphandler.NewServeMux(h, slog.Default())
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) userBody {
	t.Helper()
	var u userBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	return u
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestCreateUser(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	u := decodeUser(t, rec)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.NotEmpty(t, u.CreatedAt)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

// A duplicate email on create is a 409 conflict.
func TestCreateUser_DuplicateEmail(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Bob","email":"ann@x.com"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "conflict", e.Code)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "email", e.Fields[0].Field)
}

// Validation failures report every violated field in one response.
func TestCreateUser_ValidationFields(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/resources", `{"name":"","email":"not-an-email"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "validation_failed", e.Code)

	fields := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email"}, fields)
}

// The decoder fails closed: invalid JSON and unknown fields are both 400.
func TestCreateUser_MalformedBody(t *testing.T) {
	mux := setupMux(t)

	for name, body := range map[string]string{
		"invalid json":  `{"name": "Ann"`,
		"unknown field": `{"name":"Ann","email":"ann@x.com","admin":true}`,
		"trailing data": `{"name":"Ann","email":"ann@x.com"}{}`,
		"empty body":    ``,
	} {
		rec := doJSON(t, mux, http.MethodPost, "/resources", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "malformed_request", decodeError(t, rec).Code, name)
	}
}

func TestGetUser(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	rec := doJSON(t, mux, http.MethodGet, "/resources/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", decodeUser(t, rec).Name)
}

func TestGetUser_NotFound(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/resources/42", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestGetUser_InvalidID(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/resources/abc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed_request", decodeError(t, rec).Code)
}

func TestGetUserByEmail(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	rec := doJSON(t, mux, http.MethodGet, "/resources/email/ann@x.com", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeUser(t, rec).ID)

	rec = doJSON(t, mux, http.MethodGet, "/resources/email/ghost@x.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Zed","email":"zed@x.com"}`)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	rec := doJSON(t, mux, http.MethodGet, "/resources", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var users []userBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	// Insertion order, not sorted.
	assert.Equal(t, "Zed", users[0].Name)
	assert.Equal(t, "Ann", users[1].Name)
}

func TestListUsers_Empty(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/resources", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// Case-insensitive substring search in insertion order.
func TestSearchUsers(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Jo Doe","email":"jo@x.com"}`)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Jon Doe","email":"jon@x.com"}`)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	rec := doJSON(t, mux, http.MethodGet, "/resources/search?name=doe", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var users []userBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Jo Doe", users[0].Name)
	assert.Equal(t, "Jon Doe", users[1].Name)

	// Empty substring matches all.
	rec = doJSON(t, mux, http.MethodGet, "/resources/search?name=", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 3)
}

func TestUpdateUser(t *testing.T) {
	mux := setupMux(t)
	created := decodeUser(t, doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`))

	rec := doJSON(t, mux, http.MethodPut, "/resources/1", `{"name":"Ann2","email":"ann@x.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeUser(t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ann2", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.NotEqual(t, created.UpdatedAt, updated.UpdatedAt)
}

func TestUpdateUser_NotFound(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodPut, "/resources/42", `{"name":"Ann","email":"ann@x.com"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Bob","email":"bob@x.com"}`)

	rec := doJSON(t, mux, http.MethodPut, "/resources/2", `{"name":"Bob","email":"ann@x.com"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Code)
}

func TestDeleteUser(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	rec := doJSON(t, mux, http.MethodDelete, "/resources/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Deleted id never resolves again.
	rec = doJSON(t, mux, http.MethodGet, "/resources/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser_NotFound(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodDelete, "/resources/42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// The exists endpoint returns a bare JSON boolean.
func TestUserExists(t *testing.T) {
	mux := setupMux(t)
	doJSON(t, mux, http.MethodPost, "/resources", `{"name":"Ann","email":"ann@x.com"}`)

	rec := doJSON(t, mux, http.MethodGet, "/resources/exists/ann@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `true`, rec.Body.String())

	rec = doJSON(t, mux, http.MethodGet, "/resources/exists/ghost@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `false`, rec.Body.String())
}

func TestStoreUnavailable(t *testing.T) {
	svc := application.NewUserService(brokenStore{}, application.NewMapper())
	h := httphandler.NewHandler(svc, slog.Default())
	mux := httphandler.NewServeMux(h, slog.Default())

	rec := doJSON(t, mux, http.MethodGet, "/resources", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "store_unavailable", e.Code)
	// The cause is logged, never leaked to the caller.
	assert.NotContains(t, e.Error, "store down")
}

func TestHealth(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDHeader(t *testing.T) {
	mux := setupMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
