package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	employeeerrors "go-cto/internal/employee/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepo struct {
	createFn      func(ctx context.Context, empl *Employee) error
	findAllFn     func(ctx context.Context) ([]Employee, error)
	findOptionsFn func(ctx context.Context) ([]Employee, error)
	findByIDFn    func(ctx context.Context, id string) (*Employee, error)
	updateFn      func(ctx context.Context, empl *Employee) error
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeEmployeeRepo) Create(ctx context.Context, empl *Employee) error {
	return f.createFn(ctx, empl)
}
func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]Employee, error) {
	return f.findAllFn(ctx)
}
func (f *fakeEmployeeRepo) FindOptions(ctx context.Context) ([]Employee, error) {
	return f.findOptionsFn(ctx)
}
func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*Employee, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeEmployeeRepo) FindByIDs(ctx context.Context, ids []string) ([]Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, empl *Employee) error {
	return f.updateFn(ctx, empl)
}
func (f *fakeEmployeeRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}
func (f *fakeEmployeeRepo) AddBalance(ctx context.Context, employeeID string, hours decimal.Decimal) (bool, error) {
	return true, nil
}
func (f *fakeEmployeeRepo) DebitBalance(ctx context.Context, employeeID string, hours decimal.Decimal) (bool, error) {
	return true, nil
}

func TestCreateEmployee(t *testing.T) {
	t.Run("success persists and invalidates options cache", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(EmployeeOptionsKey).SetVal(1)

		var created *Employee
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, empl *Employee) error {
				created = empl
				return nil
			},
		}
		svc := NewService(nil, repo, rdb)

		designationID := uuid.NewString()
		resp, err := svc.Create(context.Background(), CreateEmployeeRequest{
			FullName:      "Dana Reyes",
			Email:         "dana.reyes@example.com",
			Role:          "employee",
			DesignationID: &designationID,
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, created.ID.String(), resp.ID)
		assert.Equal(t, "Dana Reyes", resp.FullName)
		assert.NotNil(t, resp.DesignationID)
		assert.Equal(t, designationID, *resp.DesignationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative duplicate email maps to conflict", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, empl *Employee) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_email"}
			},
		}
		svc := NewService(nil, repo, nil)

		_, err := svc.Create(context.Background(), CreateEmployeeRequest{
			FullName: "Dana Reyes",
			Email:    "dana.reyes@example.com",
			Role:     "employee",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
	})

	t.Run("negative malformed designation id is rejected before persist", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, empl *Employee) error {
				t.Fatal("create should not be reached")
				return nil
			},
		}
		svc := NewService(nil, repo, nil)

		bad := "not-a-uuid"
		_, err := svc.Create(context.Background(), CreateEmployeeRequest{
			FullName:      "Dana Reyes",
			Email:         "dana.reyes@example.com",
			Role:          "employee",
			DesignationID: &bad,
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDesignationID)
	})
}

func TestGetEmployeeByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		repo := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, got string) (*Employee, error) {
				assert.Equal(t, id.String(), got)
				return &Employee{
					ID:       id,
					FullName: "Dana Reyes",
					Email:    "dana.reyes@example.com",
					Role:     "employee",
					CtoHours: decimal.NewFromFloat(12.5),
				}, nil
			},
		}
		svc := NewService(nil, repo, nil)

		resp, err := svc.GetByID(context.Background(), id.String())

		assert.NoError(t, err)
		assert.Equal(t, 12.5, resp.CtoHours)
		assert.Nil(t, resp.DesignationID)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		svc := NewService(nil, &fakeEmployeeRepo{}, nil)

		_, err := svc.GetByID(context.Background(), "42")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("negative unknown id maps to not found", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, id string) (*Employee, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(nil, repo, nil)

		_, err := svc.GetByID(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestGetEmployeeOptions(t *testing.T) {
	t.Run("success serves from cache without hitting the repository", func(t *testing.T) {
		cached := []EmployeeResponse{{ID: uuid.NewString(), FullName: "Dana Reyes"}}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)

		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(EmployeeOptionsKey).SetVal(string(payload))

		repo := &fakeEmployeeRepo{
			findOptionsFn: func(ctx context.Context) ([]Employee, error) {
				t.Fatal("repository should not be reached on a cache hit")
				return nil, nil
			},
		}
		svc := NewService(nil, repo, rdb)

		resp, err := svc.GetOptions(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success falls through to the repository and caches", func(t *testing.T) {
		id := uuid.New()
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(EmployeeOptionsKey).RedisNil()
		mock.Regexp().ExpectSet(EmployeeOptionsKey, `.*`, 1*time.Hour).SetVal("OK")

		repo := &fakeEmployeeRepo{
			findOptionsFn: func(ctx context.Context) ([]Employee, error) {
				return []Employee{{ID: id, FullName: "Dana Reyes", Role: "employee"}}, nil
			},
		}
		svc := NewService(nil, repo, rdb)

		resp, err := svc.GetOptions(context.Background())

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, id.String(), resp[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative repository failure surfaces", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			findOptionsFn: func(ctx context.Context) ([]Employee, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := NewService(nil, repo, nil)

		_, err := svc.GetOptions(context.Background())

		assert.EqualError(t, err, "connection reset")
	})
}

func TestUpdateEmployee(t *testing.T) {
	t.Run("success overwrites fields and invalidates options cache", func(t *testing.T) {
		id := uuid.New()
		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(EmployeeOptionsKey).SetVal(1)

		var updated *Employee
		repo := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, got string) (*Employee, error) {
				return &Employee{ID: id, FullName: "Dana Reyes", Email: "dana.reyes@example.com", Role: "employee"}, nil
			},
			updateFn: func(ctx context.Context, empl *Employee) error {
				updated = empl
				return nil
			},
		}
		svc := NewService(nil, repo, rdb)

		resp, err := svc.Update(context.Background(), id.String(), UpdateEmployeeRequest{
			FullName: "Dana Reyes-Cruz",
			Email:    "dana.cruz@example.com",
			Role:     "supervisor",
		})

		assert.NoError(t, err)
		assert.NotNil(t, updated)
		assert.Equal(t, "Dana Reyes-Cruz", updated.FullName)
		assert.Equal(t, "supervisor", resp.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, id string) (*Employee, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(nil, repo, nil)

		_, err := svc.Update(context.Background(), uuid.NewString(), UpdateEmployeeRequest{
			FullName: "Dana Reyes",
			Email:    "dana.reyes@example.com",
			Role:     "employee",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestDeleteEmployee(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(EmployeeOptionsKey).SetVal(1)

		deleted := ""
		repo := &fakeEmployeeRepo{
			deleteFn: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
		}
		svc := NewService(nil, repo, rdb)

		id := uuid.NewString()
		err := svc.Delete(context.Background(), id)

		assert.NoError(t, err)
		assert.Equal(t, id, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative malformed id", func(t *testing.T) {
		svc := NewService(nil, &fakeEmployeeRepo{}, nil)

		err := svc.Delete(context.Background(), "nope")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}
