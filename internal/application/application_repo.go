package application

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=application_repo.go -destination=mock/application_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, app *CtoApplication) error
	FindAll(ctx context.Context) ([]CtoApplication, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]CtoApplication, error)
	FindByID(ctx context.Context, id string) (*CtoApplication, error)
	FindPendingByApprover(ctx context.Context, approverID string) ([]CtoApplication, error)

	// Transaction-aware operations. Every state transition is a
	// compare-and-swap on the persisted status, so a false return means
	// the row was already moved by a concurrent transaction.
	GetForUpdate(ctx context.Context, id string) (*CtoApplication, error)
	FindStepsForUpdate(ctx context.Context, applicationID string) ([]ApprovalStep, error)
	FindAllocations(ctx context.Context, applicationID string) ([]MemoAllocation, error)
	ApproveStep(ctx context.Context, stepID string, at time.Time) (bool, error)
	RejectStep(ctx context.Context, stepID, remarks string, at time.Time) (bool, error)
	SetStatus(ctx context.Context, applicationID, from, to string, completedAt *time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, app *CtoApplication) error {
	appQuery := `
INSERT INTO cto_applications (
	id, employee_id, requested_hours, reason, date_from, date_to, status,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
`
	exec := r.execer()
	if _, err := exec.ExecContext(
		ctx, appQuery,
		app.ID, app.EmployeeID, app.RequestedHours, app.Reason,
		app.DateFrom, app.DateTo, app.Status,
	); err != nil {
		return err
	}

	stepQuery := `
INSERT INTO approval_steps (
	id, application_id, level, approver_id, status, remarks, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
`
	for _, step := range app.Steps {
		if _, err := exec.ExecContext(
			ctx, stepQuery,
			step.ID, step.ApplicationID, step.Level, step.ApproverID, step.Status, step.Remarks,
		); err != nil {
			return err
		}
	}

	allocQuery := `
INSERT INTO memo_allocations (
	id, application_id, credit_id, applied_hours, created_at
) VALUES ($1, $2, $3, $4, NOW())
`
	for _, alloc := range app.Allocations {
		if _, err := exec.ExecContext(
			ctx, allocQuery,
			alloc.ID, alloc.ApplicationID, alloc.CreditID, alloc.AppliedHours,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindAll(ctx context.Context) ([]CtoApplication, error) {
	var apps []CtoApplication
	err := r.preloaded(ctx).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]CtoApplication, error) {
	var apps []CtoApplication
	err := r.preloaded(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*CtoApplication, error) {
	var app CtoApplication
	err := r.preloaded(ctx).First(&app, "id = ?", id).Error
	return &app, err
}

// FindPendingByApprover lists applications waiting on the given approver,
// whatever their level. The ordering guard still decides whose turn it is.
func (r *repository) FindPendingByApprover(ctx context.Context, approverID string) ([]CtoApplication, error) {
	var apps []CtoApplication
	err := r.preloaded(ctx).
		Joins("JOIN approval_steps ON approval_steps.application_id = cto_applications.id").
		Where("approval_steps.approver_id = ?", approverID).
		Where("approval_steps.status = ?", StepStatusPending).
		Where("cto_applications.status = ?", StatusPending).
		Distinct().
		Order("cto_applications.created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) GetForUpdate(ctx context.Context, id string) (*CtoApplication, error) {
	query := `
SELECT id, employee_id, requested_hours, reason, status
FROM cto_applications
WHERE id = $1
FOR UPDATE
`
	var app CtoApplication
	err := r.querier().QueryRowContext(ctx, query, id).Scan(
		&app.ID, &app.EmployeeID, &app.RequestedHours, &app.Reason, &app.Status,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) FindStepsForUpdate(ctx context.Context, applicationID string) ([]ApprovalStep, error) {
	query := `
SELECT id, application_id, level, approver_id, status, remarks, reviewed_at
FROM approval_steps
WHERE application_id = $1
ORDER BY level ASC
FOR UPDATE
`
	rows, err := r.querier().QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []ApprovalStep
	for rows.Next() {
		var s ApprovalStep
		if err := rows.Scan(
			&s.ID, &s.ApplicationID, &s.Level, &s.ApproverID, &s.Status, &s.Remarks, &s.ReviewedAt,
		); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *repository) FindAllocations(ctx context.Context, applicationID string) ([]MemoAllocation, error) {
	query := `
SELECT id, application_id, credit_id, applied_hours
FROM memo_allocations
WHERE application_id = $1
ORDER BY created_at ASC
`
	rows, err := r.querier().QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []MemoAllocation
	for rows.Next() {
		var a MemoAllocation
		if err := rows.Scan(&a.ID, &a.ApplicationID, &a.CreditID, &a.AppliedHours); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

func (r *repository) ApproveStep(ctx context.Context, stepID string, at time.Time) (bool, error) {
	query := `
UPDATE approval_steps
SET status = 'APPROVED', reviewed_at = $2, updated_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`
	return r.execAffected(ctx, query, stepID, at)
}

func (r *repository) RejectStep(ctx context.Context, stepID, remarks string, at time.Time) (bool, error) {
	query := `
UPDATE approval_steps
SET status = 'REJECTED', remarks = $2, reviewed_at = $3, updated_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`
	return r.execAffected(ctx, query, stepID, remarks, at)
}

func (r *repository) SetStatus(ctx context.Context, applicationID, from, to string, completedAt *time.Time) (bool, error) {
	query := `
UPDATE cto_applications
SET status = $3, date_completed = $4, updated_at = NOW()
WHERE id = $1 AND status = $2
`
	return r.execAffected(ctx, query, applicationID, from, to, completedAt)
}

func (r *repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Allocations")
}

func (r *repository) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.execer().ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Statement.ConnPool
}

func (r *repository) querier() interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Statement.ConnPool
}
