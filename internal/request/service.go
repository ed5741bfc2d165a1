package request

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/access-management/internal"
	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/internal/core/events"
	"github.com/frahmantamala/access-management/internal/software"
)

// RepositoryAPI lookups return nil, nil when nothing matches.
type RepositoryAPI interface {
	Create(ctx context.Context, r *requestDatamodel.Request) error
	GetByID(ctx context.Context, id int64) (*requestDatamodel.Request, error)
	FindPending(ctx context.Context, userID, softwareID int64, accessType string) (*requestDatamodel.Request, error)
	ListByUser(ctx context.Context, userID int64) ([]*requestDatamodel.Request, error)
	ListPending(ctx context.Context) ([]*requestDatamodel.Request, error)
	// TransitionFromPending writes the review only while the request is still
	// Pending and reports whether it did.
	TransitionFromPending(ctx context.Context, r *requestDatamodel.Request) (bool, error)
}

type SoftwareLookup interface {
	GetByID(ctx context.Context, id int64) (*softwareDatamodel.Software, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

type StatsReader interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type Service struct {
	repo       RepositoryAPI
	software   SoftwareLookup
	users      UserLookup
	stats      StatsReader
	authorizer internal.Authorizer
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	repo RepositoryAPI,
	softwareLookup SoftwareLookup,
	users UserLookup,
	stats StatsReader,
	authorizer internal.Authorizer,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		software:   softwareLookup,
		users:      users,
		stats:      stats,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create submits a new Pending request for the caller.
func (s *Service) Create(ctx context.Context, caller *internal.Identity, dto CreateRequestDTO) (*Request, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapCreateRequest); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	sw, err := s.software.GetByID(ctx, dto.SoftwareID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load software", err)
	}
	if sw == nil {
		return nil, software.ErrNotFound
	}

	accessType := software.AccessLevel(dto.AccessType)
	if !software.FromDataModel(sw).Offers(accessType) {
		return nil, ErrUnsupportedAccessLevel.WithMessage("Software does not support " + dto.AccessType + " access level")
	}

	requester, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if requester == nil {
		return nil, ErrRequesterNotFound
	}

	existing, err := s.repo.FindPending(ctx, caller.UserID, dto.SoftwareID, dto.AccessType)
	if err != nil {
		return nil, internal.NewInternalError("failed to check pending requests", err)
	}
	if existing != nil {
		return nil, ErrDuplicatePending
	}

	record := ToDataModel(&Request{
		UserID:     caller.UserID,
		SoftwareID: dto.SoftwareID,
		AccessType: accessType,
		Reason:     dto.Reason,
		Status:     StatusPending,
		CreatedAt:  s.now(),
	})
	if err := s.repo.Create(ctx, record); err != nil {
		// a concurrent submission can still lose to the pending index
		if errors.Is(err, ErrDuplicatePending) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create request", err)
	}

	s.logger.Info("access request submitted",
		"request_id", record.ID,
		"user_id", caller.UserID,
		"software_id", record.SoftwareID,
		"access_type", record.AccessType)
	s.publish(ctx, events.NewRequestSubmittedEvent(record.ID, record.UserID, record.SoftwareID, record.AccessType))

	return FromDataModel(record), nil
}

// ListOwn returns the caller's requests, newest first.
func (s *Service) ListOwn(ctx context.Context, caller *internal.Identity) ([]*Request, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapListOwnRequests); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list requests", err)
	}
	return fromDataModels(records), nil
}

// Get returns a request to its owner or to a holder of the view-any capability.
func (s *Service) Get(ctx context.Context, caller *internal.Identity, id int64) (*Request, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapViewOwnRequest); err != nil {
		return nil, err
	}

	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.UserID != caller.UserID && !s.authorizer.Can(caller.Role, internal.CapViewAnyRequest) {
		s.logger.Warn("request view denied", "request_id", id, "user_id", caller.UserID, "role", caller.Role)
		return nil, ErrUnauthorizedViewer
	}
	return FromDataModel(record), nil
}

// ListPending returns every Pending request, oldest first.
func (s *Service) ListPending(ctx context.Context, caller *internal.Identity) ([]*Request, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapListPendingRequests); err != nil {
		return nil, err
	}

	records, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pending requests", err)
	}
	return fromDataModels(records), nil
}

// UpdateStatus approves or rejects a Pending request.
func (s *Service) UpdateStatus(ctx context.Context, caller *internal.Identity, id int64, dto UpdateStatusDTO) (*Request, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapReviewRequest); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	req := FromDataModel(record)
	if err := req.Review(Status(dto.Status), caller.UserID, dto.ReviewComment, s.now()); err != nil {
		return nil, err
	}

	applied, err := s.repo.TransitionFromPending(ctx, ToDataModel(req))
	if err != nil {
		return nil, internal.NewInternalError("failed to update request status", err)
	}
	if !applied {
		s.logger.Warn("request reviewed concurrently", "request_id", id, "reviewer_id", caller.UserID)
		return nil, ErrAlreadyProcessed
	}

	s.logger.Info("access request reviewed",
		"request_id", id,
		"status", req.Status,
		"reviewer_id", caller.UserID)
	s.publish(ctx, events.NewRequestReviewedEvent(req.ID, req.UserID, caller.UserID, string(req.Status)))

	return req, nil
}

// Stats counts requests per status.
func (s *Service) Stats(ctx context.Context, caller *internal.Identity) (*Stats, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapRequestStats); err != nil {
		return nil, err
	}

	counts, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count requests", err)
	}

	stats := &Stats{
		Pending:  counts[string(StatusPending)],
		Approved: counts[string(StatusApproved)],
		Rejected: counts[string(StatusRejected)],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

func (s *Service) load(ctx context.Context, id int64) (*requestDatamodel.Request, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load request", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func fromDataModels(records []*requestDatamodel.Request) []*Request {
	out := make([]*Request, 0, len(records))
	for _, rec := range records {
		out = append(out, FromDataModel(rec))
	}
	return out
}
