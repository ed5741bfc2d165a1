package auth

import (
	"strings"

	"github.com/frahmantamala/access-management/internal/core/common/validation"
	"github.com/frahmantamala/access-management/internal/user"
)

// SignupDTO carries a self registration. Any role in the body is ignored.
type SignupDTO struct {
	Username string  `json:"username" validate:"required,max=100"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"fullName" validate:"omitempty,max=200"`
}

func (d *SignupDTO) Normalize() {
	d.Username = strings.TrimSpace(d.Username)
	if d.Email != nil {
		e := strings.TrimSpace(*d.Email)
		if e == "" {
			d.Email = nil
		} else {
			d.Email = &e
		}
	}
	if d.FullName != nil {
		n := strings.TrimSpace(*d.FullName)
		if n == "" {
			d.FullName = nil
		} else {
			d.FullName = &n
		}
	}
}

func (d SignupDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

// AuthResult is a successful signup or login.
type AuthResult struct {
	Token string
	User  *user.User
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    user.Summary `json:"user"`
}
