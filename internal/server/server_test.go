package server

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeAnonymous(t *testing.T) {
	_, app := newTestServer(t)

	resp := get(t, app, "/", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "What's Happening?")
	assert.Contains(t, body, "Sign up")
}

func TestHomeFeed(t *testing.T) {
	srv, app := newTestServer(t)
	viewer := createUser(t, srv, "viewer")
	followed := createUser(t, srv, "followed")
	stranger := createUser(t, srv, "stranger")

	createMessage(t, srv, viewer.ID, "my own words")
	createMessage(t, srv, followed.ID, "followed words")
	createMessage(t, srv, stranger.ID, "stranger words")

	require.NoError(t, srv.follows.Follow(t.Context(), viewer.ID, followed.ID))

	cookie := login(t, app, "viewer")
	resp := get(t, app, "/", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "my own words")
	assert.Contains(t, body, "followed words")
	assert.NotContains(t, body, "stranger words")
}

func TestHealthCheck(t *testing.T) {
	_, app := newTestServer(t)

	resp := get(t, app, "/healthz", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "healthy", payload["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, app := newTestServer(t)

	resp := get(t, app, "/metrics", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
