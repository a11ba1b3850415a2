package server

import (
	"errors"
	"fmt"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ShowSignup handles GET /signup
func (s *Server) ShowSignup(c *fiber.Ctx) error {
	return s.render(c, "users/signup", fiber.Map{"Username": "", "Email": ""})
}

// HandleSignup handles POST /signup. Validation failures (empty password)
// surface before any persistence attempt; duplicate username or email comes
// back from the commit as an integrity error.
func (s *Server) HandleSignup(c *fiber.Ctx) error {
	username := c.FormValue("username")
	email := c.FormValue("email")

	user, err := s.auth.Signup(username, email, c.FormValue("password"), c.FormValue("image_url"))
	if err != nil {
		msg := "Invalid signup"
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		return s.render(c, "users/signup", fiber.Map{
			"Error": msg, "Username": username, "Email": email,
		})
	}

	if err := s.users.Create(c.Context(), user); err != nil {
		if models.IsIntegrityError(err) {
			return s.render(c, "users/signup", fiber.Map{
				"Error": "Username or email already taken", "Username": username, "Email": email,
			})
		}
		return s.renderError(c, err)
	}

	if err := s.setCurrentUser(c, user.ID); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ShowLogin handles GET /login
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	return s.render(c, "users/login", nil)
}

// HandleLogin handles POST /login. Unknown usernames and wrong passwords get
// the same response.
func (s *Server) HandleLogin(c *fiber.Ctx) error {
	user, ok := s.auth.Authenticate(c.Context(), c.FormValue("username"), c.FormValue("password"))
	if !ok {
		return s.render(c, "users/login", fiber.Map{"Error": "Invalid credentials."})
	}

	if err := s.setCurrentUser(c, user.ID); err != nil {
		return s.renderError(c, err)
	}
	s.flash(c, fmt.Sprintf("Hello, %s!", user.Username))
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout handles POST /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.clearCurrentUser(c); err != nil {
		return s.renderError(c, err)
	}
	s.flash(c, "You have successfully logged out.")
	return c.Redirect("/login", fiber.StatusSeeOther)
}
