package repositories

import (
	"errors"

	"gerbang/internal/models"
)

// Sentinel errors returned by every UserRepository implementation.
// The unique index on email is the authority for ErrDuplicateEmail;
// callers must treat it as the real arbiter of the signup race, not
// any lookup done beforehand.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNotFound       = errors.New("user not found")
)

// UserRepository defines the interface for user data access. Emails are
// expected to be normalized (lowercased) by the caller before they
// cross this boundary.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
