package postgres

import (
	"context"
	"errors"
	"fmt"

	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
	"github.com/frahmantamala/access-management/internal/software"
	"gorm.io/gorm"
)

type SoftwareRepository struct {
	db *gorm.DB
}

func NewSoftwareRepository(db *gorm.DB) *SoftwareRepository {
	return &SoftwareRepository{db: db}
}

func (r *SoftwareRepository) GetAll(ctx context.Context) ([]*softwareDatamodel.Software, error) {
	var list []*softwareDatamodel.Software
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list software: %w", err)
	}
	return list, nil
}

func (r *SoftwareRepository) GetByID(ctx context.Context, id int64) (*softwareDatamodel.Software, error) {
	var s softwareDatamodel.Software
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get software %d: %w", id, err)
	}
	return &s, nil
}

func (r *SoftwareRepository) GetByName(ctx context.Context, name string) (*softwareDatamodel.Software, error) {
	var s softwareDatamodel.Software
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get software by name: %w", err)
	}
	return &s, nil
}

func (r *SoftwareRepository) Create(ctx context.Context, s *softwareDatamodel.Software) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return software.ErrExists.WithCause(err)
		}
		return fmt.Errorf("create software: %w", err)
	}
	return nil
}

func (r *SoftwareRepository) Update(ctx context.Context, s *softwareDatamodel.Software) error {
	err := r.db.WithContext(ctx).Model(&softwareDatamodel.Software{}).
		Where("id = ?", s.ID).
		Select("name", "description", "access_levels").
		Updates(s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return software.ErrExists.WithCause(err)
		}
		return fmt.Errorf("update software %d: %w", s.ID, err)
	}
	return nil
}

func (r *SoftwareRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&softwareDatamodel.Software{}, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return software.ErrInUse.WithCause(res.Error)
		}
		return fmt.Errorf("delete software %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return software.ErrNotFound
	}
	return nil
}
