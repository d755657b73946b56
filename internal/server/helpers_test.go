package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"followerUserId", "follower user ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePage(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		return c.SendString(strconv.Itoa(parsePage(c)))
	})

	tests := map[string]string{
		"/items":          "1",
		"/items?page=3":   "3",
		"/items?page=0":   "1",
		"/items?page=-2":  "1",
		"/items?page=abc": "1",
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			buf := make([]byte, 8)
			n, _ := resp.Body.Read(buf)
			assert.Equal(t, want, string(buf[:n]))
		})
	}
}

func TestParseID_Invalid(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/users/:userId", func(c *fiber.Ctx) error {
		if _, err := s.parseID(c, "userId"); err != nil {
			return nil
		}
		return c.SendStatus(fiber.StatusOK)
	})

	for _, raw := range []string{"0", "-1", "abc"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/"+raw, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, raw)
		_ = resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/12", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRespondError_RetryAfter(t *testing.T) {
	app := fiber.New()
	app.Get("/throttled", func(c *fiber.Ctx) error {
		return respondError(c, &service.ThrottledError{
			AppErr:     models.NewRateLimitedError("slow down"),
			RetryAfter: 90 * time.Second,
		})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return respondError(c, assert.AnError)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/throttled", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "90", resp.Header.Get(fiber.HeaderRetryAfter))
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	_ = resp.Body.Close()
}
