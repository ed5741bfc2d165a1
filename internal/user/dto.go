package user

import "github.com/frahmantamala/access-management/internal/core/common/validation"

type ChangeRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=Employee Manager Admin"`
}

func (d ChangeRoleDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type UserResponse struct {
	User Summary `json:"user"`
}

type RoleChangedResponse struct {
	Message string  `json:"message"`
	User    Summary `json:"user"`
}
