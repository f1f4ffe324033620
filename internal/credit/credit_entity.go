package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch status.
const (
	StatusCredited   = "CREDITED"
	StatusRolledBack = "ROLLEDBACK"
)

// Sub-ledger entry status.
const (
	EntryStatusActive     = "ACTIVE"
	EntryStatusExhausted  = "EXHAUSTED"
	EntryStatusRolledBack = "ROLLEDBACK"
)

// CtoCredit is one memo-backed issuance event fanned out to N employees.
type CtoCredit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemoNo        string    `gorm:"type:varchar(60);not null;uniqueIndex:uq_cto_credit_memo_no"`
	DateApproved  time.Time `gorm:"type:date;not null"`
	AttachmentRef string    `gorm:"type:text"`

	Hours      int             `gorm:"type:int;not null"`
	Minutes    int             `gorm:"type:int;not null"`
	TotalHours decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Status   string    `gorm:"type:varchar(20);not null;default:'CREDITED';index:idx_cto_credits_status"`
	IssuedBy uuid.UUID `gorm:"type:uuid;not null"`

	RolledBackBy   *uuid.UUID `gorm:"type:uuid"`
	DateRolledBack *time.Time

	Entries []CreditEntry `gorm:"foreignKey:CreditID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CtoCredit) TableName() string { return "cto_credits" }

// CreditEntry is the per-employee sub-ledger row of one batch.
//
// Invariant: used_hours + reserved_hours <= credited_hours and
// remaining_hours = credited_hours - used_hours - reserved_hours, with all
// three non-negative. Every mutation re-checks this in its WHERE clause.
type CreditEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreditID   uuid.UUID `gorm:"type:uuid;not null;index:idx_credit_entries_credit"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_credit_entries_employee"`

	CreditedHours  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	UsedHours      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	ReservedHours  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	RemainingHours decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Status       string    `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_credit_entries_status"`
	DateCredited time.Time `gorm:"not null;index:idx_credit_entries_date_credited"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CreditEntry) TableName() string { return "cto_credit_entries" }
