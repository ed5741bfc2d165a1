package request

import (
	"time"

	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
)

type Request struct {
	ID            int64      `gorm:"primaryKey"`
	UserID        int64      `gorm:"column:user_id;not null;index"`
	SoftwareID    int64      `gorm:"column:software_id;not null;index"`
	AccessType    string     `gorm:"column:access_type;not null"`
	Reason        string     `gorm:"column:reason;type:text;not null"`
	Status        string     `gorm:"column:status;not null;default:Pending;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
	ReviewedBy    *int64     `gorm:"column:reviewed_by"`
	ReviewComment *string    `gorm:"column:review_comment;type:text"`

	User     *userDatamodel.User         `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Software *softwareDatamodel.Software `gorm:"foreignKey:SoftwareID;constraint:OnDelete:RESTRICT"`
}

func (Request) TableName() string {
	return "requests"
}
