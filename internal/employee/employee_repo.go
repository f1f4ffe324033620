package employee

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByIDs(ctx context.Context, ids []string) ([]Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id string) error
	AddBalance(ctx context.Context, employeeID string, hours decimal.Decimal) (bool, error)
	DebitBalance(ctx context.Context, employeeID string, hours decimal.Decimal) (bool, error)
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Select("id", "full_name", "email", "role", "designation_id").
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&empls).Error
	return empls, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
}

// AddBalance increments the aggregate balance atomically. Honors WithTx.
// Returns false when the employee row no longer exists.
func (r *repository) AddBalance(ctx context.Context, employeeID string, hours decimal.Decimal) (bool, error) {
	query := `
UPDATE employees
SET cto_hours = cto_hours + $2, updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, hours)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DebitBalance decrements the aggregate balance, guarded so it can never go
// negative. Returns false when the guard rejected the update.
func (r *repository) DebitBalance(ctx context.Context, employeeID string, hours decimal.Decimal) (bool, error) {
	query := `
UPDATE employees
SET cto_hours = cto_hours - $2, updated_at = NOW()
WHERE id = $1 AND cto_hours >= $2 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, hours)
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
