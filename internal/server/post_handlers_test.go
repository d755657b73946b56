package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedResponse struct {
	Posts    []models.Post `json:"posts"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	HasMore  bool          `json:"has_more"`
}

func decodeFeed(t *testing.T, body []byte) feedResponse {
	t.Helper()
	var page feedResponse
	require.NoError(t, json.Unmarshal(body, &page), string(body))
	return page
}

func feedTitles(page feedResponse) []string {
	titles := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestPostVisibilityOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	public := ts.createPost(t, alice, "open letter", true)
	private := ts.createPost(t, alice, "diary", false)

	resp, body := ts.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"open letter"}, feedTitles(decodeFeed(t, body)))

	resp, _ = ts.do(t, http.MethodGet, "/api/posts/"+itoa(private.ID), bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/posts/"+itoa(private.ID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Mutual follow reveals private posts.
	resp, _ = ts.do(t, http.MethodPost, "/api/users/"+itoa(alice.ID)+"/follow", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodPost, "/api/users/"+itoa(bob.ID)+"/follow", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodGet, "/api/posts", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"diary", "open letter"}, feedTitles(decodeFeed(t, body)))

	resp, _ = ts.do(t, http.MethodGet, "/api/posts/"+itoa(public.ID), "not-a-token", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "bad tokens on public routes browse anonymously")
}

func TestGetPosts_Modes(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	ts.createPost(t, bob, "from bob", true)
	ts.createPost(t, alice, "from alice", true)

	resp, body := ts.do(t, http.MethodGet, "/api/posts?mode=following", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, decodeError(t, body).Code)

	resp, body = ts.do(t, http.MethodGet, "/api/posts?mode=following", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeFeed(t, body).Posts)

	ts.do(t, http.MethodPost, "/api/users/"+itoa(bob.ID)+"/follow", alice.Token, nil)
	resp, body = ts.do(t, http.MethodGet, "/api/posts?mode=following", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"from bob"}, feedTitles(decodeFeed(t, body)))

	resp, _ = ts.do(t, http.MethodGet, "/api/posts?mode=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchPosts(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	ts.createPost(t, alice, "Gardening tips", true)
	ts.createPost(t, alice, "Cooking notes", true)

	resp, body := ts.do(t, http.MethodGet, "/api/posts/search?q=GARDEN", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Gardening tips"}, feedTitles(decodeFeed(t, body)))

	resp, body = ts.do(t, http.MethodGet, "/api/posts/search?q=", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"posts":[],"page":1,"page_size":10,"has_more":false}`, string(body))
}

func TestShareAndLike(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	origin := ts.createPost(t, alice, "worth sharing", true)

	resp, body := ts.do(t, http.MethodPost, "/api/posts/"+itoa(origin.ID)+"/share", bob.Token,
		map[string]any{"caption": "see this"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var share models.Post
	require.NoError(t, json.Unmarshal(body, &share))
	require.NotNil(t, share.SharedPostID)
	assert.Equal(t, origin.ID, *share.SharedPostID)

	resp, body = ts.do(t, http.MethodGet, "/api/posts/"+itoa(share.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Post
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.Origin)
	assert.True(t, got.Origin.Available)
	assert.Equal(t, "alice", got.Origin.OwnerHandle)

	resp, body = ts.do(t, http.MethodPost, "/api/posts/"+itoa(origin.ID)+"/like", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"liked":true,"likes_count":1}`, string(body))

	resp, body = ts.do(t, http.MethodGet, "/api/posts/"+itoa(origin.ID), bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Liked)
	assert.Equal(t, 1, got.LikesCount)

	resp, _ = ts.do(t, http.MethodDelete, "/api/posts/"+itoa(origin.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodGet, "/api/posts/"+itoa(share.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.Origin)
	assert.False(t, got.Origin.Available)
	assert.Equal(t, origin.ID, got.Origin.ID)
}

func TestUpdatePost_Ownership(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	post := ts.createPost(t, alice, "draft", true)

	resp, _ := ts.do(t, http.MethodPut, "/api/posts/"+itoa(post.ID), bob.Token, map[string]any{"title": "mine now"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := ts.do(t, http.MethodPut, "/api/posts/"+itoa(post.ID), alice.Token, map[string]any{"title": "final", "is_public": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.Post
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "final", updated.Title)
	assert.False(t, updated.IsPublic)

	resp, _ = ts.do(t, http.MethodPut, "/api/posts/"+itoa(post.ID), bob.Token, map[string]any{"title": "again"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "now hidden from bob")

	resp, _ = ts.do(t, http.MethodGet, "/api/posts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetThemes(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateTheme(t, ts.db, "books")

	resp, body := ts.do(t, http.MethodGet, "/api/themes", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var themes []models.Theme
	require.NoError(t, json.Unmarshal(body, &themes))
	require.Len(t, themes, 2)
	assert.Equal(t, "books", themes[0].Name)
	assert.Equal(t, "general", themes[1].Name)
}
