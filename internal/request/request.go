package request

import (
	"net/http"
	"time"

	"github.com/frahmantamala/access-management/internal"
	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	"github.com/frahmantamala/access-management/internal/software"
	"github.com/frahmantamala/access-management/internal/user"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsReviewOutcome reports whether s is a valid transition target. Both
// outcomes are terminal.
func (s Status) IsReviewOutcome() bool {
	return s == StatusApproved || s == StatusRejected
}

type Request struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"userId"`
	SoftwareID    int64                `json:"softwareId"`
	AccessType    software.AccessLevel `json:"accessType"`
	Reason        string               `json:"reason"`
	Status        Status               `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     *time.Time           `json:"updatedAt"`
	ReviewedBy    *int64               `json:"reviewedBy"`
	ReviewComment *string              `json:"reviewComment"`

	User     *user.Summary      `json:"user,omitempty"`
	Software *software.Software `json:"software,omitempty"`
}

// Review moves a pending request to target. Terminal requests never move.
func (r *Request) Review(target Status, reviewerID int64, comment *string, at time.Time) error {
	if !target.IsReviewOutcome() {
		return ErrInvalidStatus
	}
	if r.Status != StatusPending {
		return ErrAlreadyProcessed
	}
	r.Status = target
	r.ReviewedBy = &reviewerID
	r.ReviewComment = comment
	r.UpdatedAt = &at
	return nil
}

// Stats counts requests per status.
type Stats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

var (
	ErrNotFound               = internal.NewNotFoundError("Request not found", internal.ErrCodeRequestNotFound)
	ErrDuplicatePending       = internal.NewConflictError("A similar request is already pending", internal.ErrCodeDuplicatePendingRequest)
	ErrUnauthorizedViewer     = internal.NewForbiddenError("Unauthorized to view this request", internal.ErrCodeUnauthorizedViewer)
	ErrInvalidStatus          = internal.NewValidationError("Valid status (Approved/Rejected) is required", internal.ErrCodeInvalidStatus)
	ErrUnsupportedAccessLevel = internal.NewValidationError("Software does not support the requested access level", internal.ErrCodeUnsupportedAccessLevel)
	ErrRequesterNotFound      = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)

	// ErrAlreadyProcessed is a conflict reported with 400, as clients of the
	// review endpoint expect.
	ErrAlreadyProcessed = &internal.AppError{
		Type:       internal.ErrorTypeConflict,
		Code:       internal.ErrCodeRequestAlreadyProcessed,
		Message:    "Request has already been processed",
		StatusCode: http.StatusBadRequest,
	}
)

func ToDataModel(r *Request) *requestDatamodel.Request {
	return &requestDatamodel.Request{
		ID:            r.ID,
		UserID:        r.UserID,
		SoftwareID:    r.SoftwareID,
		AccessType:    string(r.AccessType),
		Reason:        r.Reason,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ReviewedBy:    r.ReviewedBy,
		ReviewComment: r.ReviewComment,
	}
}

// FromDataModel converts a record and its loaded relations. An embedded user
// is always reduced to its summary.
func FromDataModel(r *requestDatamodel.Request) *Request {
	out := &Request{
		ID:            r.ID,
		UserID:        r.UserID,
		SoftwareID:    r.SoftwareID,
		AccessType:    software.AccessLevel(r.AccessType),
		Reason:        r.Reason,
		Status:        Status(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ReviewedBy:    r.ReviewedBy,
		ReviewComment: r.ReviewComment,
		User:          user.SummaryFromDataModel(r.User),
	}
	if r.Software != nil {
		out.Software = software.FromDataModel(r.Software)
	}
	return out
}
