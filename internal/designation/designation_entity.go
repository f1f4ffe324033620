package designation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Designation carries the approver chain used when an employee of this
// designation submits a CTO application.
type Designation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_designation_name"`
	ProvincialOffice string    `gorm:"type:varchar(120)"`

	Level1ApproverID *uuid.UUID `gorm:"type:uuid"`
	Level2ApproverID *uuid.UUID `gorm:"type:uuid"`
	Level3ApproverID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_designations_deleted_at"`
}
