package server

import (
	"github.com/gofiber/fiber/v2"

	"warbler/internal/middleware"
	"warbler/internal/models"
)

// currentUser resolves the logged-in user from the session, or nil for
// anonymous requests.
func (s *Server) currentUser(c *fiber.Ctx) *models.User {
	sess, err := s.store.Get(c)
	if err != nil {
		return nil
	}
	id, ok := sess.Get(currUserKey).(uint)
	if !ok {
		return nil
	}
	user, err := s.users.GetByID(c.Context(), id)
	if err != nil {
		return nil
	}
	return user
}

func (s *Server) setCurrentUser(c *fiber.Ctx, id uint) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(currUserKey, id)
	return sess.Save()
}

func (s *Server) clearCurrentUser(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	sess.Delete(currUserKey)
	return sess.Save()
}

// flash stores a one-shot notice shown on the next rendered page.
func (s *Server) flash(c *fiber.Ctx, msg string) {
	sess, err := s.store.Get(c)
	if err != nil {
		return
	}
	sess.Set("flash", msg)
	_ = sess.Save()
}

func (s *Server) popFlash(c *fiber.Ctx) string {
	sess, err := s.store.Get(c)
	if err != nil {
		return ""
	}
	msg, _ := sess.Get("flash").(string)
	if msg != "" {
		sess.Delete("flash")
		_ = sess.Save()
	}
	return msg
}

// render merges the standard view context (current user, flash) into data.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.popFlash(c)
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = s.currentUser(c)
	}
	return c.Render(name, data)
}

// denyAccess refuses an action without mutating any state. It renders the
// landing page with the literal "Access unauthorized" notice at HTTP 200,
// matching the original application's flash-then-redirect flow.
func (s *Server) denyAccess(c *fiber.Ctx) error {
	return c.Render("home_anon", fiber.Map{
		"Flash":       "Access unauthorized",
		"CurrentUser": nil,
	})
}

func (s *Server) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
		"Message":     "Page not found.",
		"CurrentUser": nil,
	})
}

func (s *Server) renderError(c *fiber.Ctx, err error) error {
	middleware.Logger.Error("handler error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
		"Message":     "Something went wrong.",
		"CurrentUser": nil,
	})
}
