package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := &Server{config: testConfig()}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.All("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func originRequest(method string) *http.Request {
	req := httptest.NewRequest(method, "/limited", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	return req
}

func TestSetupMiddleware_GlobalLimiterKeepsCORS(t *testing.T) {
	app := corsApp(t)

	for i := 0; i < 100; i++ {
		resp, err := app.Test(originRequest(http.MethodGet), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp, err := app.Test(originRequest(http.MethodGet), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.CodeRateLimited, body.Code)
}

func TestSetupMiddleware_PreflightIsNeverLimited(t *testing.T) {
	app := corsApp(t)

	for i := 0; i < 101; i++ {
		resp, err := app.Test(originRequest(http.MethodPost), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	req := originRequest(http.MethodOptions)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestSetupMiddleware_SetsRequestAndTraceHeaders(t *testing.T) {
	app := corsApp(t)

	resp, err := app.Test(originRequest(http.MethodGet), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
