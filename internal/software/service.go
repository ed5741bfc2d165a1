package software

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/access-management/internal"
	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
)

// RepositoryAPI lookups return nil, nil when nothing matches.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*softwareDatamodel.Software, error)
	GetByID(ctx context.Context, id int64) (*softwareDatamodel.Software, error)
	GetByName(ctx context.Context, name string) (*softwareDatamodel.Software, error)
	Create(ctx context.Context, s *softwareDatamodel.Software) error
	Update(ctx context.Context, s *softwareDatamodel.Software) error
	Delete(ctx context.Context, id int64) error
}

// ReferenceChecker counts the access requests that point at a software.
type ReferenceChecker interface {
	CountBySoftwareID(ctx context.Context, softwareID int64) (int64, error)
}

type Service struct {
	repo       RepositoryAPI
	refs       ReferenceChecker
	authorizer internal.Authorizer
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, refs ReferenceChecker, authorizer internal.Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		refs:       refs,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, caller *internal.Identity) ([]*Software, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapReadSoftware); err != nil {
		return nil, err
	}

	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list software", err)
	}

	list := make([]*Software, 0, len(records))
	for _, rec := range records {
		list = append(list, FromDataModel(rec))
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, caller *internal.Identity, id int64) (*Software, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapReadSoftware); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Create(ctx context.Context, caller *internal.Identity, dto CreateSoftwareDTO) (*Software, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapManageSoftware); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to check software name", err)
	}
	if existing != nil {
		return nil, ErrExists
	}

	record := ToDataModel(&Software{
		Name:         dto.Name,
		Description:  dto.Description,
		AccessLevels: toAccessLevels(dto.AccessLevels),
	})
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, ErrExists) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create software", err)
	}

	s.logger.Info("software created", "software_id", record.ID, "name", record.Name, "created_by", caller.UserID)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, caller *internal.Identity, id int64, dto UpdateSoftwareDTO) (*Software, error) {
	if err := internal.Authorize(s.authorizer, caller, internal.CapManageSoftware); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != current.Name {
		clash, err := s.repo.GetByName(ctx, *dto.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check software name", err)
		}
		if clash != nil && clash.ID != id {
			return nil, ErrExists
		}
		current.Name = *dto.Name
	}
	if dto.Description != nil {
		current.Description = *dto.Description
	}
	if dto.AccessLevels != nil {
		current.AccessLevels = toAccessLevels(dto.AccessLevels)
	}

	record := ToDataModel(current)
	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, ErrExists) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update software", err)
	}

	s.logger.Info("software updated", "software_id", id, "updated_by", caller.UserID)
	return FromDataModel(record), nil
}

// Delete removes a software that no access request references.
func (s *Service) Delete(ctx context.Context, caller *internal.Identity, id int64) error {
	if err := internal.Authorize(s.authorizer, caller, internal.CapManageSoftware); err != nil {
		return err
	}

	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	refs, err := s.refs.CountBySoftwareID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to count software references", err)
	}
	if refs > 0 {
		return ErrInUse.WithDetails(map[string]int64{"requests": refs})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrInUse) || errors.Is(err, ErrNotFound) {
			return err
		}
		return internal.NewInternalError("failed to delete software", err)
	}

	s.logger.Info("software deleted", "software_id", id, "deleted_by", caller.UserID)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Software, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load software", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(record), nil
}
