package forms

import (
	"errors"

	"tokoadmin/internal/models"
)

var (
	ErrRoleRequired     = errors.New("user type is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// LoginForm is submitted by the login screen.
type LoginForm struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role"`
}

// Check runs the local checks done before any request is sent.
func (f LoginForm) Check() error {
	if !f.Role.Valid() {
		return ErrRoleRequired
	}
	return Validate(f)
}

// RegisterForm is submitted by the register screen.
type RegisterForm struct {
	FullName        string      `json:"fullname" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Phone           string      `json:"phone" validate:"required"`
	Password        string      `json:"password" validate:"required,min=6"`
	ConfirmPassword string      `json:"confirmPassword"`
	Role            models.Role `json:"role"`
}

// Check runs the local checks done before any request is sent.
func (f RegisterForm) Check() error {
	if !f.Role.Valid() {
		return ErrRoleRequired
	}
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return Validate(f)
}
