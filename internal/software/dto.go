package software

import (
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/core/common/validation"
)

type CreateSoftwareDTO struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required"`
	AccessLevels []string `json:"accessLevels" validate:"required,min=1,unique,dive,oneof=Read Write Admin"`
}

func (d *CreateSoftwareDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func (d CreateSoftwareDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateSoftwareDTO is a partial update; nil fields are left unchanged.
type UpdateSoftwareDTO struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description" validate:"omitempty,min=1"`
	AccessLevels []string `json:"accessLevels" validate:"omitempty,min=1,unique,dive,oneof=Read Write Admin"`
}

func (d *UpdateSoftwareDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.Description != nil {
		desc := strings.TrimSpace(*d.Description)
		d.Description = &desc
	}
}

func (d UpdateSoftwareDTO) Validate() error {
	if d.Name != nil && *d.Name == "" {
		return internal.NewValidationFieldError("name", "name must not be empty", internal.ErrCodeValidationFailed)
	}
	if d.Description != nil && *d.Description == "" {
		return internal.NewValidationFieldError("description", "description must not be empty", internal.ErrCodeValidationFailed)
	}
	if d.AccessLevels != nil && len(d.AccessLevels) == 0 {
		return internal.NewValidationFieldError("accessLevels", "accessLevels must contain at least 1 item(s)", internal.ErrCodeValidationFailed)
	}
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type SoftwareResponse struct {
	Software *Software `json:"software"`
}

type SoftwareListResponse struct {
	Software []*Software `json:"software"`
}

type SoftwareMutationResponse struct {
	Message  string    `json:"message"`
	Software *Software `json:"software"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toAccessLevels(levels []string) []AccessLevel {
	out := make([]AccessLevel, len(levels))
	for i, l := range levels {
		out[i] = AccessLevel(l)
	}
	return out
}
