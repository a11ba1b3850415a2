package server

import (
	"strings"
	"testing"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMessageFlow(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "testuser")
	cookie := login(t, app, "testuser")

	resp := postForm(t, app, "/messages/new", formValues(map[string]string{
		"text": "Hello Warbler",
	}), cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users/"+itoa(user.ID), resp.Header.Get("Location"))

	msgs, err := srv.messages.ByUser(t.Context(), user.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello Warbler", msgs[0].Text)
}

func TestCreateMessageTooLong(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "testuser")
	cookie := login(t, app, "testuser")

	resp := postForm(t, app, "/messages/new", formValues(map[string]string{
		"text": strings.Repeat("x", models.MaxMessageLength+1),
	}), cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "at most 140 characters")

	count, err := srv.messages.CountByUser(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateMessageRequiresLogin(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "testuser")

	resp := postForm(t, app, "/messages/new", formValues(map[string]string{
		"text": "Hello",
	}), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Access unauthorized")

	count, err := srv.messages.CountByUser(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestShowMessage(t *testing.T) {
	srv, app := newTestServer(t)
	author := createUser(t, srv, "author")
	msg := createMessage(t, srv, author.ID, "on display")

	resp := get(t, app, "/messages/"+itoa(msg.ID), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "on display")
	assert.Contains(t, body, "@author")
	// Anonymous viewers get no delete control.
	assert.NotContains(t, body, "/delete")
}

func TestShowMessageNotFound(t *testing.T) {
	_, app := newTestServer(t)

	resp := get(t, app, "/messages/9999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteMessageOwner(t *testing.T) {
	srv, app := newTestServer(t)
	author := createUser(t, srv, "author")
	msg := createMessage(t, srv, author.ID, "short-lived")
	cookie := login(t, app, "author")

	// The owner sees the delete control.
	resp := get(t, app, "/messages/"+itoa(msg.ID), cookie)
	assert.Contains(t, bodyString(t, resp), "/messages/"+itoa(msg.ID)+"/delete")

	resp = postForm(t, app, "/messages/"+itoa(msg.ID)+"/delete", nil, cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	count, err := srv.messages.CountByUser(t.Context(), author.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteMessageNotOwner(t *testing.T) {
	srv, app := newTestServer(t)
	author := createUser(t, srv, "author")
	createUser(t, srv, "intruder")
	msg := createMessage(t, srv, author.ID, "protected")
	cookie := login(t, app, "intruder")

	resp := postForm(t, app, "/messages/"+itoa(msg.ID)+"/delete", nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Access unauthorized")

	// The message survives.
	count, err := srv.messages.CountByUser(t.Context(), author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteMessageRequiresLogin(t *testing.T) {
	srv, app := newTestServer(t)
	author := createUser(t, srv, "author")
	msg := createMessage(t, srv, author.ID, "protected")

	resp := postForm(t, app, "/messages/"+itoa(msg.ID)+"/delete", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Access unauthorized")

	count, err := srv.messages.CountByUser(t.Context(), author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
