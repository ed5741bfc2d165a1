package software

import (
	"time"

	"github.com/frahmantamala/access-management/internal"
	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
)

type AccessLevel string

const (
	AccessLevelRead  AccessLevel = "Read"
	AccessLevelWrite AccessLevel = "Write"
	AccessLevelAdmin AccessLevel = "Admin"
)

func (l AccessLevel) IsValid() bool {
	switch l {
	case AccessLevelRead, AccessLevelWrite, AccessLevelAdmin:
		return true
	}
	return false
}

type Software struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	AccessLevels []AccessLevel `json:"accessLevels"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Offers reports whether level is one of the software's access levels.
func (s *Software) Offers(level AccessLevel) bool {
	for _, l := range s.AccessLevels {
		if l == level {
			return true
		}
	}
	return false
}

var (
	ErrNotFound = internal.NewNotFoundError("Software not found", internal.ErrCodeSoftwareNotFound)
	ErrExists   = internal.NewConflictError("Software with this name already exists", internal.ErrCodeSoftwareExists)
	ErrInUse    = internal.NewConflictError("Software is referenced by access requests and cannot be deleted", internal.ErrCodeSoftwareInUse)
)

func ToDataModel(s *Software) *softwareDatamodel.Software {
	levels := make([]string, len(s.AccessLevels))
	for i, l := range s.AccessLevels {
		levels[i] = string(l)
	}
	return &softwareDatamodel.Software{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		AccessLevels: levels,
		CreatedAt:    s.CreatedAt,
	}
}

func FromDataModel(s *softwareDatamodel.Software) *Software {
	levels := make([]AccessLevel, len(s.AccessLevels))
	for i, l := range s.AccessLevels {
		levels[i] = AccessLevel(l)
	}
	return &Software{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		AccessLevels: levels,
		CreatedAt:    s.CreatedAt,
	}
}
