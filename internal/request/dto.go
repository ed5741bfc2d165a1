package request

import (
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/core/common/validation"
)

type CreateRequestDTO struct {
	SoftwareID int64  `json:"softwareId" validate:"required,gt=0"`
	AccessType string `json:"accessType" validate:"required,oneof=Read Write Admin"`
	Reason     string `json:"reason" validate:"required,max=2000"`
}

func (d *CreateRequestDTO) Normalize() {
	d.AccessType = strings.TrimSpace(d.AccessType)
	d.Reason = strings.TrimSpace(d.Reason)
}

func (d CreateRequestDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateStatusDTO struct {
	Status        string  `json:"status"`
	ReviewComment *string `json:"reviewComment" validate:"omitempty,max=2000"`
}

func (d *UpdateStatusDTO) Normalize() {
	d.Status = strings.TrimSpace(d.Status)
	if d.ReviewComment != nil {
		c := strings.TrimSpace(*d.ReviewComment)
		if c == "" {
			d.ReviewComment = nil
		} else {
			d.ReviewComment = &c
		}
	}
}

func (d UpdateStatusDTO) Validate() error {
	if !Status(d.Status).IsReviewOutcome() {
		return ErrInvalidStatus.WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{{
			Field:   "status",
			Message: "status must be one of: Approved, Rejected",
			Code:    string(internal.ErrCodeInvalidStatus),
		}}})
	}
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type RequestResponse struct {
	Request *Request `json:"request"`
}

type RequestsResponse struct {
	Requests []*Request `json:"requests"`
}

type RequestMutationResponse struct {
	Message string   `json:"message"`
	Request *Request `json:"request"`
}

type StatsResponse struct {
	Stats Stats `json:"stats"`
}
