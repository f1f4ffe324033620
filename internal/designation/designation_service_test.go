package designation

import (
	"context"
	"errors"
	"testing"

	designationerrors "go-cto/internal/designation/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeDesignationRepo struct {
	createFn   func(ctx context.Context, d *Designation) error
	findAllFn  func(ctx context.Context) ([]Designation, error)
	findByIDFn func(ctx context.Context, id string) (*Designation, error)
	updateFn   func(ctx context.Context, d *Designation) error
	deleteFn   func(ctx context.Context, id string) error
}

func (f *fakeDesignationRepo) Create(ctx context.Context, d *Designation) error {
	return f.createFn(ctx, d)
}
func (f *fakeDesignationRepo) FindAll(ctx context.Context) ([]Designation, error) {
	return f.findAllFn(ctx)
}
func (f *fakeDesignationRepo) FindByID(ctx context.Context, id string) (*Designation, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeDesignationRepo) Update(ctx context.Context, d *Designation) error {
	return f.updateFn(ctx, d)
}
func (f *fakeDesignationRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func TestResolveApproverChain(t *testing.T) {
	t.Run("success returns the three configured levels", func(t *testing.T) {
		l1, l2, l3 := uuid.New(), uuid.New(), uuid.New()
		repo := &fakeDesignationRepo{
			findByIDFn: func(ctx context.Context, id string) (*Designation, error) {
				return &Designation{
					ID:               uuid.New(),
					Name:             "Field Engineer",
					Level1ApproverID: &l1,
					Level2ApproverID: &l2,
					Level3ApproverID: &l3,
				}, nil
			},
		}
		svc := NewService(repo)

		chain, err := svc.Resolve(context.Background(), uuid.NewString())

		assert.NoError(t, err)
		assert.Equal(t, l1, chain.Level1)
		assert.Equal(t, l2, chain.Level2)
		assert.Equal(t, l3, chain.Level3)
	})

	t.Run("negative partial chain is not usable", func(t *testing.T) {
		l1 := uuid.New()
		repo := &fakeDesignationRepo{
			findByIDFn: func(ctx context.Context, id string) (*Designation, error) {
				return &Designation{ID: uuid.New(), Name: "Clerk", Level1ApproverID: &l1}, nil
			},
		}
		svc := NewService(repo)

		_, err := svc.Resolve(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, designationerrors.ErrApproverChainNotConfigured)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		svc := NewService(&fakeDesignationRepo{})

		_, err := svc.Resolve(context.Background(), "clerk")

		assert.ErrorIs(t, err, designationerrors.ErrInvalidDesignationID)
	})

	t.Run("negative unknown designation", func(t *testing.T) {
		repo := &fakeDesignationRepo{
			findByIDFn: func(ctx context.Context, id string) (*Designation, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(repo)

		_, err := svc.Resolve(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, designationerrors.ErrDesignationNotFound)
	})
}

func TestCreateDesignation(t *testing.T) {
	t.Run("success parses approver ids", func(t *testing.T) {
		var created *Designation
		repo := &fakeDesignationRepo{
			createFn: func(ctx context.Context, d *Designation) error {
				created = d
				return nil
			},
		}
		svc := NewService(repo)

		l1 := uuid.NewString()
		resp, err := svc.Create(context.Background(), UpsertDesignationRequest{
			Name:             "Field Engineer",
			ProvincialOffice: "Benguet",
			Level1ApproverID: &l1,
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, l1, created.Level1ApproverID.String())
		assert.Nil(t, created.Level2ApproverID)
		assert.Equal(t, "Benguet", resp.ProvincialOffice)
	})

	t.Run("negative malformed approver id", func(t *testing.T) {
		repo := &fakeDesignationRepo{
			createFn: func(ctx context.Context, d *Designation) error {
				t.Fatal("create should not be reached")
				return nil
			},
		}
		svc := NewService(repo)

		bad := "not-a-uuid"
		_, err := svc.Create(context.Background(), UpsertDesignationRequest{
			Name:             "Field Engineer",
			Level2ApproverID: &bad,
		})

		assert.Error(t, err)
	})

	t.Run("negative duplicate name maps to conflict", func(t *testing.T) {
		repo := &fakeDesignationRepo{
			createFn: func(ctx context.Context, d *Designation) error {
				return errors.New(`ERROR: duplicate key value violates unique constraint "uq_designation_name" (SQLSTATE 23505)`)
			},
		}
		svc := NewService(repo)

		_, err := svc.Create(context.Background(), UpsertDesignationRequest{Name: "Field Engineer"})

		assert.ErrorIs(t, err, designationerrors.ErrDesignationAlreadyExists)
	})
}

func TestUpdateDesignation(t *testing.T) {
	t.Run("success replaces the chain", func(t *testing.T) {
		id := uuid.New()
		old := uuid.New()
		var updated *Designation
		repo := &fakeDesignationRepo{
			findByIDFn: func(ctx context.Context, got string) (*Designation, error) {
				return &Designation{ID: id, Name: "Clerk", Level1ApproverID: &old}, nil
			},
			updateFn: func(ctx context.Context, d *Designation) error {
				updated = d
				return nil
			},
		}
		svc := NewService(repo)

		next := uuid.NewString()
		resp, err := svc.Update(context.Background(), id.String(), UpsertDesignationRequest{
			Name:             "Senior Clerk",
			Level1ApproverID: &next,
		})

		assert.NoError(t, err)
		assert.NotNil(t, updated)
		assert.Equal(t, next, updated.Level1ApproverID.String())
		assert.Equal(t, "Senior Clerk", resp.Name)
	})

	t.Run("negative unknown designation", func(t *testing.T) {
		repo := &fakeDesignationRepo{
			findByIDFn: func(ctx context.Context, id string) (*Designation, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(repo)

		_, err := svc.Update(context.Background(), uuid.NewString(), UpsertDesignationRequest{Name: "Clerk"})

		assert.ErrorIs(t, err, designationerrors.ErrDesignationNotFound)
	})
}
