package server

import (
	"errors"
	"fmt"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ShowNewMessage handles GET /messages/new
func (s *Server) ShowNewMessage(c *fiber.Ctx) error {
	if s.currentUser(c) == nil {
		return s.denyAccess(c)
	}
	return s.render(c, "messages/new", nil)
}

// CreateMessage handles POST /messages/new. Empty or over-length text is
// rejected before any row is written.
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	msg := &models.Message{Text: c.FormValue("text"), UserID: user.ID}
	if err := s.messages.Create(c.Context(), msg); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && models.IsValidationError(err) {
			return s.render(c, "messages/new", fiber.Map{
				"Error": appErr.Message, "Text": msg.Text,
			})
		}
		return s.renderError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", user.ID), fiber.StatusSeeOther)
}

// ShowMessage handles GET /messages/:id. The page is public; the delete
// control only renders for the owner.
func (s *Server) ShowMessage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}

	msg, err := s.messages.GetByID(c.Context(), uint(id))
	if err != nil {
		if models.IsNotFoundError(err) {
			return s.notFound(c)
		}
		return s.renderError(c, err)
	}

	user := s.currentUser(c)
	isOwner := user != nil && user.ID == msg.UserID
	return s.render(c, "messages/show", fiber.Map{"Message": msg, "IsOwner": isOwner})
}

// DeleteMessage handles POST /messages/:id/delete. Only the owner may
// delete; anyone else is denied and the message survives.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}

	msg, err := s.messages.GetByID(c.Context(), uint(id))
	if err != nil {
		if models.IsNotFoundError(err) {
			return s.notFound(c)
		}
		return s.renderError(c, err)
	}
	if msg.UserID != user.ID {
		return s.denyAccess(c)
	}

	if err := s.messages.Delete(c.Context(), msg.ID); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", user.ID), fiber.StatusSeeOther)
}
