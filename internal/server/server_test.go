package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/config"
	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Correct-Horse-9battery"

type testServer struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	mr    *miniredis.Miniredis
	theme *models.Theme
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		Env:                   "test",
		AllowedOrigins:        "http://localhost:5173",
		FeedPageSize:          10,
		CommentLimit:          20,
		CommentWindowSeconds:  300,
		SuggestionLimit:       5,
		TokenCacheTTLSeconds:  60,
		SearchResultLimit:     10,
		CommentsLatestMaxRows: 100,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)

	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)

	return &testServer{
		srv:   srv,
		app:   srv.App(),
		db:    db,
		mr:    mr,
		theme: testutil.CreateTheme(t, db, "general"),
	}
}

// do sends a request with an optional JSON body and bearer token and returns
// the response with its body read.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
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

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type session struct {
	ID    uint
	Token string
}

func (ts *testServer) register(t *testing.T, handle string) session {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"handle":     handle,
		"first_name": "Test",
		"last_name":  "User",
		"email":      handle + "@example.com",
		"password":   testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return session{ID: out.User.ID, Token: out.Token}
}

func (ts *testServer) createPost(t *testing.T, s session, title string, public bool) models.Post {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/api/posts", s.Token, map[string]any{
		"title":     title,
		"content":   "<p>" + title + " body</p>",
		"theme_id":  ts.theme.ID,
		"is_public": public,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var post models.Post
	require.NoError(t, json.Unmarshal(body, &post))
	return post
}

func decodeError(t *testing.T, body []byte) models.ErrorResponse {
	t.Helper()
	var e models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	ts.mr.Close()
	resp, body = ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), `"redis":"unhealthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/health/live", "", nil)

	resp, body := ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestNewServerWithDeps_NoRedis(t *testing.T) {
	db := testutil.NewDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)
	ts := &testServer{srv: srv, app: srv.App(), db: db, theme: testutil.CreateTheme(t, db, "plain")}

	alice := ts.register(t, "alice")
	post := ts.createPost(t, alice, "no cache", true)

	resp, body := ts.do(t, http.MethodPost, "/api/posts/"+itoa(post.ID)+"/comments", alice.Token,
		map[string]string{"content": "still works"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	_, err = NewServerWithDeps(testConfig(), nil, nil)
	assert.Error(t, err)
}
