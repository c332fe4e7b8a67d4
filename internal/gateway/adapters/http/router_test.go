package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmemory "notekeeper/internal/auth/adapters/memory"
	authservices "notekeeper/internal/auth/adapters/services"
	authapp "notekeeper/internal/auth/app"
	gatewayhttp "notekeeper/internal/gateway/adapters/http"
	"notekeeper/internal/gateway/ratelimit"
	notesmemory "notekeeper/internal/notes/adapters/memory"
	notesapp "notekeeper/internal/notes/app"
)

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter, health gatewayhttp.HealthCheck) *testServer {
	t.Helper()

	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Config{RPS: 1000, Burst: 1000})
	}
	t.Cleanup(limiter.Stop)

	users := authmemory.NewUserRepository()
	factory := authservices.NewServiceFactory("test-secret", time.Minute, 4)

	app := gatewayhttp.NewApp(time.Second, time.Second)
	gatewayhttp.SetupRouter(app, gatewayhttp.Deps{
		Auth:    authapp.NewAuthUseCase(users, factory.PasswordService(), factory.TokenService()),
		Gate:    authapp.NewGate(factory.TokenService(), users),
		Notes:   notesapp.NewNoteUseCase(notesmemory.NewNoteRepository()),
		Limiter: limiter,
		Health:  health,
	})

	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (s *testServer) register(t *testing.T, username string) {
	t.Helper()
	resp, raw := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	resp, raw := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": "pw1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(raw, &token))
	require.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

type noteBody struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   int64     `json:"version"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func decodeError(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body["error"]
}

func TestNoteLifecycle(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp, raw := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var user map[string]any
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.io", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "password")

	token := s.login(t, "alice")

	resp, raw = s.do(t, http.MethodPost, "/notes/", token, map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var created noteBody
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	resp, raw = s.do(t, http.MethodGet, "/notes/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []noteBody
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	path := "/notes/" + itoa(created.ID)

	resp, raw = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched noteBody
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	resp, raw = s.do(t, http.MethodPut, path, token, map[string]any{"title": "T2", "content": "C2", "version": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var updated noteBody
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	resp, raw = s.do(t, http.MethodPut, path, token, map[string]any{"title": "T3", "content": "C3", "version": 1})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Version conflict. Current: 2, provided: 1", decodeError(t, raw))

	resp, raw = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var afterConflict noteBody
	require.NoError(t, json.Unmarshal(raw, &afterConflict))
	assert.Equal(t, "T2", afterConflict.Title)
	assert.Equal(t, int64(2), afterConflict.Version)

	resp, raw = s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Note deleted"}`, string(raw))

	resp, raw = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Note not found", decodeError(t, raw))

	resp, _ = s.do(t, http.MethodPut, path, token, map[string]any{"title": "x", "content": "y", "version": 2})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEmptyListIsArray(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.register(t, "bob")
	token := s.login(t, "bob")

	resp, raw := s.do(t, http.MethodGet, "/notes/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestOwnershipIsolation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.register(t, "alice")
	s.register(t, "bob")
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	resp, raw := s.do(t, http.MethodPost, "/notes/", alice, map[string]string{"title": "secret", "content": "x"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var note noteBody
	require.NoError(t, json.Unmarshal(raw, &note))
	path := "/notes/" + itoa(note.ID)

	resp, _ = s.do(t, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, path, bob, map[string]any{"title": "x", "content": "y", "version": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/notes/", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))

	resp, _ = s.do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.register(t, "alice")

	resp, raw := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "other@x.io", "password": "pw2",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already exists", decodeError(t, raw))

	resp, raw = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "carol", "email": "not-an-email", "password": "pw",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, _ = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "dave", "email": "", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "erin", "email": "e@x.io", "password": strings.Repeat("p", 73),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, raw), "72 bytes")

	resp, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": strings.Repeat("p", 73),
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "", "email": "c@x.io", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.register(t, "alice")

	t.Run("wrong password", func(t *testing.T) {
		resp, raw := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", decodeError(t, raw))
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, raw := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "pw1"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", decodeError(t, raw))
	})

	t.Run("oauth2 form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=alice&password=pw1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, raw := s.send(t, req)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		assert.Contains(t, string(raw), `"token_type":"bearer"`)
	})
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, raw := s.send(t, req)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			assert.Equal(t, "Could not validate credentials", decodeError(t, raw))
		})
	}
}

func TestUpdateValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.register(t, "alice")
	token := s.login(t, "alice")

	resp, raw := s.do(t, http.MethodPost, "/notes/", token, map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var note noteBody
	require.NoError(t, json.Unmarshal(raw, &note))

	resp, _ = s.do(t, http.MethodPut, "/notes/"+itoa(note.ID), token, map[string]string{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/notes/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid note id", decodeError(t, raw))

	resp, _ = s.do(t, http.MethodPost, "/notes/", token, map[string]string{"title": strings.Repeat("t", 256), "content": "C"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, "/notes/999", token, map[string]any{"title": "x", "content": "y", "version": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *testServer) doForm(t *testing.T, path, token string, values url.Values) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func TestFormBodiesAreNotAliased(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp, raw := s.doForm(t, "/auth/register", "", url.Values{
		"username": {"formuser"}, "email": {"form@x.io"}, "password": {"pw1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	token := s.login(t, "formuser")

	resp, raw = s.doForm(t, "/notes/", token, url.Values{
		"title": {"AAAAAAAAAAAAAAAA"}, "content": {"BBBBBBBBBBBBBBBB"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var first noteBody
	require.NoError(t, json.Unmarshal(raw, &first))

	for _, letter := range []string{"Z", "Y", "X", "W", "V"} {
		resp, _ = s.doForm(t, "/notes/", token, url.Values{
			"title": {strings.Repeat(letter, 16)}, "content": {strings.Repeat(letter, 16)},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = s.doForm(t, "/auth/register", "", url.Values{
			"username": {strings.Repeat(letter, 8)}, "email": {"o@x.io"}, "password": {"pw1"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, raw = s.do(t, http.MethodGet, "/notes/"+itoa(first.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stored noteBody
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "AAAAAAAAAAAAAAAA", stored.Title)
	assert.Equal(t, "BBBBBBBBBBBBBBBB", stored.Content)
	assert.Equal(t, int64(1), stored.Version)

	s.login(t, "formuser")
	resp, raw = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "formuser", "email": "again@x.io", "password": "pw1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already exists", decodeError(t, raw))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, raw := s.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"message":"Notes API"}`, string(raw))

	resp, _ = s.do(t, http.MethodGet, "/notes/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, ratelimit.New(ratelimit.Config{RPS: 0.001, Burst: 2}), nil)

	body := map[string]string{"username": "nobody", "password": "x"}
	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, http.MethodPost, "/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, _ := s.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := newTestServer(t, nil, func(context.Context) error { return nil })
		resp, raw := s.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok"}`, string(raw))
	})

	t.Run("storage down", func(t *testing.T) {
		s := newTestServer(t, nil, func(context.Context) error { return errors.New("down") })
		resp, _ := s.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp, raw := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", decodeError(t, raw))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
