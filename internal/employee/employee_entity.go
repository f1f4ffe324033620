package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FullName      string     `gorm:"type:varchar(120);not null"`
	Email         string     `gorm:"type:varchar(255);uniqueIndex:uq_employee_email"`
	Role          string     `gorm:"type:varchar(20);not null;default:'employee'"`
	DesignationID *uuid.UUID `gorm:"type:uuid;index"`

	// Aggregate CTO balance. Only the credit and application services touch
	// this, always through conditional updates inside a transaction.
	CtoHours decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}
