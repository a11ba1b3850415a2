// Package auth implements credential hashing, signup validation and login
// verification for Warbler accounts.
package auth

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Service validates credentials and produces users ready for persistence.
type Service struct {
	users repository.UserRepository
}

// NewService creates an auth service backed by the given user repository.
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Signup validates the input and returns an UNSAVED user carrying the bcrypt
// hash of the password. The caller owns the commit: duplicate usernames or
// emails and blank required fields surface as integrity errors from
// UserRepository.Create, never from here. An empty password fails immediately
// with a validation error.
func (s *Service) Signup(username, email, password, imageURL string) (*models.User, error) {
	if password == "" {
		return nil, models.NewValidationError("password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	return &models.User{
		Username:       username,
		Email:          email,
		Password:       string(hashed),
		ImageURL:       imageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}, nil
}

// Authenticate looks the user up by username and verifies the password
// against the stored hash. Unknown usernames and wrong passwords produce the
// same (nil, false) result so callers cannot tell which was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, bool) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, false
	}
	return user, true
}
