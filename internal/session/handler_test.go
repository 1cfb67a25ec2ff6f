package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *mux.Router {
	h := NewHandler(NewService(kv.NewMemoryStore()))
	r := mux.NewRouter()
	r.HandleFunc("/session/login", h.HandleLogin).Methods("POST")
	h.SetupRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, wantStatus int, into any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, wantStatus, rec.Code, rec.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
	}
}

func TestHandler_SessionLifecycle(t *testing.T) {
	r := newTestRouter()

	var resp SessionResponse
	do(t, r, http.MethodGet, "/session", "", http.StatusOK, &resp)
	assert.False(t, resp.LoggedIn)
	assert.Nil(t, resp.User)

	var errResp pkg.ErrorResponse
	do(t, r, http.MethodPost, "/session/login", `{"email":"nope"}`, http.StatusBadRequest, &errResp)
	assert.Equal(t, ErrInvalidEmail.Error(), errResp.Error)
	do(t, r, http.MethodPut, "/session/name", `{"name":"Ghost"}`, http.StatusUnauthorized, nil)

	do(t, r, http.MethodPost, "/session/login", `{"email":"lee@example.com"}`, http.StatusOK, &resp)
	assert.True(t, resp.LoggedIn)
	assert.Equal(t, "lee", resp.User.Name)

	do(t, r, http.MethodPut, "/session/name", `{"name":"Lee K."}`, http.StatusOK, &resp)
	assert.Equal(t, "Lee K.", resp.User.Name)

	resp = SessionResponse{}
	do(t, r, http.MethodGet, "/session", "", http.StatusOK, &resp)
	assert.Equal(t, &User{Email: "lee@example.com", Name: "Lee K."}, resp.User)

	resp = SessionResponse{}
	do(t, r, http.MethodPost, "/session/logout", "", http.StatusOK, &resp)
	do(t, r, http.MethodGet, "/session", "", http.StatusOK, &resp)
	assert.False(t, resp.LoggedIn)
}

func TestHandler_Profile(t *testing.T) {
	r := newTestRouter()

	do(t, r, http.MethodGet, "/profile/image", "", http.StatusNotFound, nil)
	do(t, r, http.MethodPut, "/profile/image", `{"image":"plain text"}`, http.StatusBadRequest, nil)

	var image ProfileImageRequest
	do(t, r, http.MethodPut, "/profile/image", `{"image":"data:image/jpeg;base64,/9j/4AAQ"}`, http.StatusOK, nil)
	do(t, r, http.MethodGet, "/profile/image", "", http.StatusOK, &image)
	assert.Equal(t, "data:image/jpeg;base64,/9j/4AAQ", image.Image)

	var theme ThemeResponse
	do(t, r, http.MethodGet, "/profile/theme", "", http.StatusOK, &theme)
	assert.Equal(t, DefaultTheme, theme.Theme.ID)
	assert.Len(t, theme.Themes, 6)

	do(t, r, http.MethodPut, "/profile/theme", `{"theme":"mint"}`, http.StatusOK, &theme)
	assert.Equal(t, "Mint", theme.Theme.Name)
	do(t, r, http.MethodPut, "/profile/theme", `{"theme":"gold"}`, http.StatusBadRequest, nil)
}
