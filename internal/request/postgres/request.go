package postgres

import (
	"context"
	"errors"
	"fmt"

	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	"github.com/frahmantamala/access-management/internal/request"
	"gorm.io/gorm"
)

// PendingTupleIndexSQL keeps at most one Pending request per user, software
// and access type. It is also created by the initial migration.
const PendingTupleIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS uq_requests_pending_tuple
ON requests (user_id, software_id, access_type) WHERE status = 'Pending'`

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *requestDatamodel.Request) error {
	err := r.db.WithContext(ctx).
		Omit("User", "Software").
		Create(req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return request.ErrDuplicatePending.WithCause(err)
		}
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*requestDatamodel.Request, error) {
	var req requestDatamodel.Request
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Software").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request %d: %w", id, err)
	}
	return &req, nil
}

func (r *RequestRepository) FindPending(ctx context.Context, userID, softwareID int64, accessType string) (*requestDatamodel.Request, error) {
	var req requestDatamodel.Request
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND software_id = ? AND access_type = ? AND status = ?",
			userID, softwareID, accessType, string(request.StatusPending)).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return &req, nil
}

func (r *RequestRepository) ListByUser(ctx context.Context, userID int64) ([]*requestDatamodel.Request, error) {
	var list []*requestDatamodel.Request
	err := r.db.WithContext(ctx).
		Preload("Software").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list requests of user %d: %w", userID, err)
	}
	return list, nil
}

func (r *RequestRepository) ListPending(ctx context.Context) ([]*requestDatamodel.Request, error) {
	var list []*requestDatamodel.Request
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Software").
		Where("status = ?", string(request.StatusPending)).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return list, nil
}

func (r *RequestRepository) TransitionFromPending(ctx context.Context, req *requestDatamodel.Request) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&requestDatamodel.Request{}).
		Where("id = ? AND status = ?", req.ID, string(request.StatusPending)).
		Updates(map[string]interface{}{
			"status":         req.Status,
			"reviewed_by":    req.ReviewedBy,
			"review_comment": req.ReviewComment,
			"updated_at":     req.UpdatedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("transition request %d: %w", req.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *RequestRepository) CountBySoftwareID(ctx context.Context, softwareID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&requestDatamodel.Request{}).
		Where("software_id = ?", softwareID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count requests of software %d: %w", softwareID, err)
	}
	return n, nil
}
