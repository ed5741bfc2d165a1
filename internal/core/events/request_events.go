package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestSubmitted = "request.submitted"
	EventTypeRequestReviewed  = "request.reviewed"
)

type RequestSubmittedEvent struct {
	BaseEvent
	RequestID  int64  `json:"request_id"`
	UserID     int64  `json:"user_id"`
	SoftwareID int64  `json:"software_id"`
	AccessType string `json:"access_type"`
}

func NewRequestSubmittedEvent(requestID, userID, softwareID int64, accessType string) *RequestSubmittedEvent {
	return &RequestSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":  requestID,
				"user_id":     userID,
				"software_id": softwareID,
				"access_type": accessType,
			},
		},
		RequestID:  requestID,
		UserID:     userID,
		SoftwareID: softwareID,
		AccessType: accessType,
	}
}

type RequestReviewedEvent struct {
	BaseEvent
	RequestID  int64  `json:"request_id"`
	UserID     int64  `json:"user_id"`
	ReviewerID int64  `json:"reviewer_id"`
	Status     string `json:"status"`
}

func NewRequestReviewedEvent(requestID, userID, reviewerID int64, status string) *RequestReviewedEvent {
	return &RequestReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":  requestID,
				"user_id":     userID,
				"reviewer_id": reviewerID,
				"status":      status,
			},
		},
		RequestID:  requestID,
		UserID:     userID,
		ReviewerID: reviewerID,
		Status:     status,
	}
}
