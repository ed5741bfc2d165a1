package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/access-management/internal"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	authorizer internal.Authorizer
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, authorizer internal.Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(u), nil
}

// ChangeRole sets the role of userID. Only holders of the user management
// capability may call it and they cannot change their own role.
func (s *Service) ChangeRole(ctx context.Context, caller *internal.Identity, userID int64, role internal.Role) (*User, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapManageUsers); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if caller.UserID == userID {
		return nil, ErrCannotDemoteSelf
	}

	found, err := s.repo.UpdateRole(ctx, userID, string(role))
	if err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	s.logger.Info("user role changed", "user_id", userID, "role", role, "changed_by", caller.UserID)
	return s.GetByID(ctx, userID)
}
