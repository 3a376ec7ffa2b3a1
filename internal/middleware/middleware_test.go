package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"todo-backend/internal/auth"
	"todo-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: AppErrorHandler})
	app.Use(ErrorHandler())
	app.Get("/whoami", UseToken, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("userID").(int),
			"role":    c.Locals("role").(string),
		})
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	return app
}

func decode(t *testing.T, app *fiber.App, method, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestUseTokenAcceptsAccessToken(t *testing.T) {
	pair, err := config.Tokens.Issue(12, "staff")
	require.NoError(t, err)

	status, body := decode(t, newTestApp(), "GET", "/whoami", "Bearer "+pair.Access)
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(12), body["user_id"])
	assert.Equal(t, "staff", body["role"])
}

func TestUseTokenRejects(t *testing.T) {
	pair, err := config.Tokens.Issue(12, "member")
	require.NoError(t, err)
	expired, err := auth.NewIssuer("secret", -time.Minute, time.Hour).Issue(12, "member")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "No token provided"},
		{"wrong scheme", "Token " + pair.Access, "Invalid token format"},
		{"refresh token", "Bearer " + pair.Refresh, "Invalid token"},
		{"garbage", "Bearer abc.def.ghi", "Invalid token"},
		{"expired", "Bearer " + expired.Access, "Token expired"},
	}
	app := newTestApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := decode(t, app, "GET", "/whoami", tt.header)
			assert.Equal(t, 401, status)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	status, body := decode(t, newTestApp(), "GET", "/panic", "")
	assert.Equal(t, 500, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(500), body["status"])
}

func TestAppErrorHandlerWrapsUnknownRoute(t *testing.T) {
	status, body := decode(t, newTestApp(), "GET", "/nope", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, float64(404), body["status"])
	assert.NotEmpty(t, body["message"])
}
