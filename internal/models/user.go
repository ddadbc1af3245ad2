package models

import "gorm.io/gorm"

// Age bounds enforced at signup. The lower bound is a policy choice
// (no accounts for children under 13), not a schema limit.
const (
	MinSignupAge = 13
	MaxSignupAge = 120
)

// User represents a registered account. Input rules live on the
// request DTOs below; by the time a User exists its fields are already
// validated.
type User struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string     `json:"name" gorm:"type:varchar(100)"`
	Email      string     `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Age        int        `json:"age"`
	Password   string     `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never the raw password
	gorm.Model `json:"-"` // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// View returns the subset of the user that is safe to send to clients.
func (u *User) View() UserView {
	return UserView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
	}
}

// UserView is the client-facing projection of a User. It never carries
// the password hash.
type UserView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// SignupRequest is the request body for POST /user/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100,fullname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Age      int    `json:"age" validate:"required,signupage"`
}

// LoginRequest is the request body for POST /user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
