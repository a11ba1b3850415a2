package server

import (
	"fmt"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET /. Authenticated users see their feed: their own messages
// plus those of everyone they follow, newest first.
func (s *Server) Home(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.render(c, "home_anon", nil)
	}

	messages, err := s.messages.Feed(c.Context(), user.ID, 100)
	if err != nil {
		return s.renderError(c, err)
	}
	return s.render(c, "home", fiber.Map{"CurrentUser": user, "Messages": messages})
}

// ListUsers handles GET /users with an optional ?q= username filter.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	q := c.Query("q")

	var (
		users []models.User
		err   error
	)
	if q == "" {
		users, err = s.users.List(c.Context(), 100, 0)
	} else {
		users, err = s.users.Search(c.Context(), q, 100, 0)
	}
	if err != nil {
		return s.renderError(c, err)
	}
	return s.render(c, "users/index", fiber.Map{"Users": users})
}

// ShowUser handles GET /users/:id — the public profile with exact counts of
// messages, following, followers and likes.
func (s *Server) ShowUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}

	profile, err := s.users.GetByID(c.Context(), uint(id))
	if err != nil {
		if models.IsNotFoundError(err) {
			return s.notFound(c)
		}
		return s.renderError(c, err)
	}

	messageCount, err := s.messages.CountByUser(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	followingCount, err := s.follows.CountFollowing(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	followersCount, err := s.follows.CountFollowers(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	likeCount, err := s.likes.CountByUser(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	messages, err := s.messages.ByUser(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}

	return s.render(c, "users/show", fiber.Map{
		"Profile":        profile,
		"Messages":       messages,
		"MessageCount":   messageCount,
		"FollowingCount": followingCount,
		"FollowersCount": followersCount,
		"LikeCount":      likeCount,
	})
}

// ShowFollowing handles GET /users/:id/following. Any authenticated user may
// view it; anonymous access is denied without side effects.
func (s *Server) ShowFollowing(c *fiber.Ctx) error {
	if s.currentUser(c) == nil {
		return s.denyAccess(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}
	profile, err := s.users.GetByID(c.Context(), uint(id))
	if err != nil {
		return s.notFound(c)
	}

	following, err := s.follows.Following(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	return s.render(c, "users/following", fiber.Map{"Profile": profile, "Users": following})
}

// ShowFollowers handles GET /users/:id/followers.
func (s *Server) ShowFollowers(c *fiber.Ctx) error {
	if s.currentUser(c) == nil {
		return s.denyAccess(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}
	profile, err := s.users.GetByID(c.Context(), uint(id))
	if err != nil {
		return s.notFound(c)
	}

	followers, err := s.follows.Followers(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	return s.render(c, "users/followers", fiber.Map{"Profile": profile, "Users": followers})
}

// ShowLikes handles GET /users/:id/likes.
func (s *Server) ShowLikes(c *fiber.Ctx) error {
	if s.currentUser(c) == nil {
		return s.denyAccess(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}
	profile, err := s.users.GetByID(c.Context(), uint(id))
	if err != nil {
		return s.notFound(c)
	}

	liked, err := s.likes.LikedMessages(c.Context(), profile.ID)
	if err != nil {
		return s.renderError(c, err)
	}
	return s.render(c, "users/likes", fiber.Map{"Profile": profile, "Messages": liked})
}

// FollowUser handles POST /users/follow/:id — the current user starts
// following the target.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}
	if _, err := s.users.GetByID(c.Context(), uint(id)); err != nil {
		return s.notFound(c)
	}

	if err := s.follows.Follow(c.Context(), user.ID, uint(id)); err != nil {
		switch {
		case models.IsValidationError(err):
			s.flash(c, "You cannot follow yourself.")
		case models.IsIntegrityError(err):
			s.flash(c, "You are already following that user.")
		default:
			return s.renderError(c, err)
		}
	}
	return c.Redirect("/users/"+c.Params("id"), fiber.StatusSeeOther)
}

// UnfollowUser handles POST /users/stop-following/:id
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.notFound(c)
	}

	if err := s.follows.Unfollow(c.Context(), user.ID, uint(id)); err != nil && !models.IsNotFoundError(err) {
		return s.renderError(c, err)
	}
	return c.Redirect("/users/"+c.Params("id"), fiber.StatusSeeOther)
}

// ToggleLike handles POST /users/add_like/:messageId. Re-liking removes the
// like; a denied attempt changes nothing.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	messageID, err := c.ParamsInt("messageId")
	if err != nil {
		return s.notFound(c)
	}

	if _, err := s.likes.Toggle(c.Context(), user.ID, uint(messageID)); err != nil {
		switch {
		case models.IsNotFoundError(err):
			return s.notFound(c)
		case models.IsValidationError(err):
			return s.denyAccess(c)
		default:
			return s.renderError(c, err)
		}
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ShowEditProfile handles GET /users/profile
func (s *Server) ShowEditProfile(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}
	return s.render(c, "users/edit", fiber.Map{"Profile": user})
}

// HandleEditProfile handles POST /users/profile. The user confirms the
// change with their password; a wrong password is denied without mutation.
func (s *Server) HandleEditProfile(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	if _, ok := s.auth.Authenticate(c.Context(), user.Username, c.FormValue("password")); !ok {
		return s.denyAccess(c)
	}

	if v := c.FormValue("username"); v != "" {
		user.Username = v
	}
	if v := c.FormValue("email"); v != "" {
		user.Email = v
	}
	if v := c.FormValue("image_url"); v != "" {
		user.ImageURL = v
	}
	if v := c.FormValue("header_image_url"); v != "" {
		user.HeaderImageURL = v
	}
	user.Bio = c.FormValue("bio")
	user.Location = c.FormValue("location")

	if err := s.users.Update(c.Context(), user); err != nil {
		if models.IsIntegrityError(err) {
			return s.render(c, "users/edit", fiber.Map{
				"Profile": user, "Error": "Username or email already taken",
			})
		}
		return s.renderError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", user.ID), fiber.StatusSeeOther)
}

// DeleteAccount handles POST /users/delete. The deletion cascades to owned
// messages, follow edges in both directions and likes.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	if err := s.clearCurrentUser(c); err != nil {
		return s.renderError(c, err)
	}
	if err := s.users.Delete(c.Context(), user.ID); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect("/signup", fiber.StatusSeeOther)
}
