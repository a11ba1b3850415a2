package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"warbler/internal/config"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// newTestServer boots a full server against a private in-memory SQLite
// database. Rate limiting is bypassed via APP_ENV=test.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		AppEnv:    "test",
		Port:      "8080",
		JWTSecret: "test-secret-key",
	}
	srv, err := New(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		srv.Shutdown(context.Background())
	})
	return srv, srv.App()
}

// createUser signs up and persists a user with the given username and
// password "password123".
func createUser(t *testing.T, srv *Server, username string) *models.User {
	t.Helper()

	user, err := srv.auth.Signup(username, username+"@example.com", "password123", "")
	require.NoError(t, err)
	require.NoError(t, srv.users.Create(context.Background(), user))
	return user
}

// createMessage persists a message owned by userID.
func createMessage(t *testing.T, srv *Server, userID uint, text string) *models.Message {
	t.Helper()

	msg := &models.Message{Text: text, UserID: userID}
	require.NoError(t, srv.messages.Create(context.Background(), msg))
	return msg
}

// login posts the credentials and returns the session cookie.
func login(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()

	resp := postForm(t, app, "/login", url.Values{
		"username": {username},
		"password": {"password123"},
	}, nil)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

// get performs a GET request, optionally authenticated.
func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// postForm performs a form POST, optionally authenticated.
func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// itoa formats a record id for building request paths.
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// formValues builds url.Values from a plain map.
func formValues(m map[string]string) url.Values {
	v := url.Values{}
	for key, val := range m {
		v.Set(key, val)
	}
	return v
}

// bodyString drains and returns the response body.
func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return string(b)
}
