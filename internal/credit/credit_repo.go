package credit

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=credit_repo.go -destination=mock/credit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *CtoCredit) error
	FindAll(ctx context.Context) ([]CtoCredit, error)
	FindByID(ctx context.Context, id string) (*CtoCredit, error)
	FindActiveEntriesByEmployee(ctx context.Context, employeeID string) ([]CreditEntry, error)

	// Transaction-aware operations below. All honor WithTx and re-check
	// their preconditions in SQL, so a false return means another
	// transaction got there first.
	GetForUpdate(ctx context.Context, id string) (*CtoCredit, error)
	FindEntriesInBatch(ctx context.Context, creditID string) ([]CreditEntry, error)
	FindActiveEntriesForUpdate(ctx context.Context, employeeID string) ([]CreditEntry, error)
	CountInFlight(ctx context.Context, creditID string) (int64, error)
	MarkRolledBack(ctx context.Context, creditID, actorID string, at time.Time) (bool, error)
	MarkEntriesRolledBack(ctx context.Context, creditID string) error
	Reserve(ctx context.Context, entryID string, hours decimal.Decimal) (bool, error)
	CommitUsage(ctx context.Context, creditID, employeeID string, hours decimal.Decimal) (bool, error)
	Release(ctx context.Context, creditID, employeeID string, hours decimal.Decimal) (bool, error)
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

func (r *repository) Create(ctx context.Context, c *CtoCredit) error {
	batchQuery := `
INSERT INTO cto_credits (
	id, memo_no, date_approved, attachment_ref, hours, minutes, total_hours,
	status, issued_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
`
	exec := r.execer()
	if _, err := exec.ExecContext(
		ctx, batchQuery,
		c.ID, c.MemoNo, c.DateApproved, c.AttachmentRef,
		c.Hours, c.Minutes, c.TotalHours, c.Status, c.IssuedBy,
	); err != nil {
		return err
	}

	entryQuery := `
INSERT INTO cto_credit_entries (
	id, credit_id, employee_id, credited_hours, used_hours, reserved_hours,
	remaining_hours, status, date_credited, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
`
	for _, e := range c.Entries {
		if _, err := exec.ExecContext(
			ctx, entryQuery,
			e.ID, e.CreditID, e.EmployeeID, e.CreditedHours, e.UsedHours,
			e.ReservedHours, e.RemainingHours, e.Status, e.DateCredited,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindAll(ctx context.Context) ([]CtoCredit, error) {
	var credits []CtoCredit
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Order("date_approved DESC").
		Find(&credits).Error
	return credits, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*CtoCredit, error) {
	var c CtoCredit
	err := r.db.WithContext(ctx).
		Preload("Entries").
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindActiveEntriesByEmployee(ctx context.Context, employeeID string) ([]CreditEntry, error) {
	var entries []CreditEntry
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status = ?", EntryStatusActive).
		Order("date_credited ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) GetForUpdate(ctx context.Context, id string) (*CtoCredit, error) {
	query := `
SELECT id, memo_no, date_approved, attachment_ref, hours, minutes, total_hours, status, issued_by
FROM cto_credits
WHERE id = $1
FOR UPDATE
`
	var c CtoCredit
	err := r.querier().QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.MemoNo, &c.DateApproved, &c.AttachmentRef,
		&c.Hours, &c.Minutes, &c.TotalHours, &c.Status, &c.IssuedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindEntriesInBatch(ctx context.Context, creditID string) ([]CreditEntry, error) {
	query := `
SELECT id, credit_id, employee_id, credited_hours, used_hours, reserved_hours,
	remaining_hours, status, date_credited
FROM cto_credit_entries
WHERE credit_id = $1
ORDER BY date_credited ASC, id ASC
FOR UPDATE
`
	return r.scanEntries(ctx, query, creditID)
}

// FindActiveEntriesForUpdate is the reservation scan. Oldest credit is
// drawn first; the batch id breaks ties between same-day credits.
func (r *repository) FindActiveEntriesForUpdate(ctx context.Context, employeeID string) ([]CreditEntry, error) {
	query := `
SELECT id, credit_id, employee_id, credited_hours, used_hours, reserved_hours,
	remaining_hours, status, date_credited
FROM cto_credit_entries
WHERE employee_id = $1 AND status = 'ACTIVE'
ORDER BY date_credited ASC, credit_id ASC
FOR UPDATE
`
	return r.scanEntries(ctx, query, employeeID)
}

func (r *repository) CountInFlight(ctx context.Context, creditID string) (int64, error) {
	query := `
SELECT COUNT(*)
FROM cto_credit_entries
WHERE credit_id = $1 AND (used_hours > 0 OR reserved_hours > 0)
`
	var count int64
	err := r.querier().QueryRowContext(ctx, query, creditID).Scan(&count)
	return count, err
}

func (r *repository) MarkRolledBack(ctx context.Context, creditID, actorID string, at time.Time) (bool, error) {
	query := `
UPDATE cto_credits
SET status = 'ROLLEDBACK', rolled_back_by = $2, date_rolled_back = $3, updated_at = NOW()
WHERE id = $1 AND status = 'CREDITED'
`
	return r.execAffected(ctx, query, creditID, actorID, at)
}

func (r *repository) MarkEntriesRolledBack(ctx context.Context, creditID string) error {
	query := `
UPDATE cto_credit_entries
SET status = 'ROLLEDBACK', updated_at = NOW()
WHERE credit_id = $1
`
	_, err := r.execer().ExecContext(ctx, query, creditID)
	return err
}

func (r *repository) Reserve(ctx context.Context, entryID string, hours decimal.Decimal) (bool, error) {
	query := `
UPDATE cto_credit_entries
SET reserved_hours = reserved_hours + $2,
	remaining_hours = remaining_hours - $2,
	updated_at = NOW()
WHERE id = $1 AND status = 'ACTIVE' AND remaining_hours >= $2
`
	return r.execAffected(ctx, query, entryID, hours)
}

// CommitUsage moves reserved hours to used on final approval. Remaining is
// untouched by the move, so exhaustion is judged on the current value.
func (r *repository) CommitUsage(ctx context.Context, creditID, employeeID string, hours decimal.Decimal) (bool, error) {
	query := `
UPDATE cto_credit_entries
SET used_hours = used_hours + $3,
	reserved_hours = reserved_hours - $3,
	status = CASE WHEN remaining_hours <= 0 THEN 'EXHAUSTED' ELSE status END,
	updated_at = NOW()
WHERE credit_id = $1 AND employee_id = $2 AND reserved_hours >= $3
`
	return r.execAffected(ctx, query, creditID, employeeID, hours)
}

// Release returns reserved hours to remaining on rejection. An entry
// exhausted by another application's commit becomes drawable again.
func (r *repository) Release(ctx context.Context, creditID, employeeID string, hours decimal.Decimal) (bool, error) {
	query := `
UPDATE cto_credit_entries
SET reserved_hours = reserved_hours - $3,
	remaining_hours = remaining_hours + $3,
	status = CASE WHEN status = 'EXHAUSTED' THEN 'ACTIVE' ELSE status END,
	updated_at = NOW()
WHERE credit_id = $1 AND employee_id = $2 AND reserved_hours >= $3
`
	return r.execAffected(ctx, query, creditID, employeeID, hours)
}

func (r *repository) scanEntries(ctx context.Context, query string, args ...any) ([]CreditEntry, error) {
	rows, err := r.querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CreditEntry
	for rows.Next() {
		var e CreditEntry
		if err := rows.Scan(
			&e.ID, &e.CreditID, &e.EmployeeID, &e.CreditedHours, &e.UsedHours,
			&e.ReservedHours, &e.RemainingHours, &e.Status, &e.DateCredited,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
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

type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func (r *repository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Statement.ConnPool
}

func (r *repository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Statement.ConnPool
}
