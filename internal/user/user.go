package user

import (
	"time"

	"github.com/frahmantamala/access-management/internal"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
)

type User struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"`
	Email        *string       `json:"email"`
	FullName     *string       `json:"fullName"`
	Role         internal.Role `json:"role"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Summary is the only user shape that leaves the service.
type Summary struct {
	ID       int64         `json:"id"`
	Username string        `json:"username"`
	FullName *string       `json:"fullName"`
	Email    *string       `json:"email"`
	Role     internal.Role `json:"role"`
}

func (u *User) ToSummary() Summary {
	return Summary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func (u *User) Identity() *internal.Identity {
	return &internal.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}

var (
	ErrNotFound         = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrUsernameTaken    = internal.NewConflictError("Username already exists", internal.ErrCodeUsernameTaken)
	ErrCannotDemoteSelf = internal.NewValidationError("Admins cannot change their own role", internal.ErrCodeCannotDemoteSelf)
	ErrInvalidRole      = internal.NewValidationError("Role must be one of: Employee, Manager, Admin", internal.ErrCodeInvalidRole)
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         internal.Role(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

// SummaryFromDataModel sanitizes an embedded user relation; nil stays nil.
func SummaryFromDataModel(u *userDatamodel.User) *Summary {
	if u == nil {
		return nil
	}
	s := FromDataModel(u).ToSummary()
	return &s
}
