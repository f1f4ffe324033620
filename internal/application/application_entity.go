package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application status. Terminal once it leaves PENDING.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Step status.
const (
	StepStatusPending  = "PENDING"
	StepStatusApproved = "APPROVED"
	StepStatusRejected = "REJECTED"
)

// Decisions accepted by the state machine.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

const approvalLevels = 3

// CtoApplication is one spend request against an employee's banked hours.
type CtoApplication struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_cto_applications_employee"`

	RequestedHours decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Reason         string          `gorm:"type:text"`
	DateFrom       *time.Time      `gorm:"type:date"`
	DateTo         *time.Time      `gorm:"type:date"`

	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_cto_applications_status"`
	DateCompleted *time.Time

	Steps       []ApprovalStep   `gorm:"foreignKey:ApplicationID"`
	Allocations []MemoAllocation `gorm:"foreignKey:ApplicationID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CtoApplication) TableName() string { return "cto_applications" }

// ApprovalStep is one approver's checkpoint. A step at level N leaves
// PENDING only after every lower level is APPROVED, and a decided step
// is never mutated again.
type ApprovalStep struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index:idx_approval_steps_application"`
	Level         int       `gorm:"type:int;not null"`
	ApproverID    uuid.UUID `gorm:"type:uuid;not null;index:idx_approval_steps_approver"`

	Status     string `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Remarks    string `gorm:"type:text"`
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ApprovalStep) TableName() string { return "approval_steps" }

// MemoAllocation records how many hours one credit batch contributed to
// an application. Allocations across one application sum to its
// requested hours.
type MemoAllocation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index:idx_memo_allocations_application"`
	CreditID      uuid.UUID `gorm:"type:uuid;not null;index:idx_memo_allocations_credit"`

	AppliedHours decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time
}

func (MemoAllocation) TableName() string { return "memo_allocations" }
