package designation

import (
	"context"
	"errors"
	"strings"

	designationerrors "go-cto/internal/designation/errors"
	"go-cto/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApproverChain is the resolved three-level chain for a designation. All
// three levels are set when Resolve succeeds.
type ApproverChain struct {
	Level1 uuid.UUID
	Level2 uuid.UUID
	Level3 uuid.UUID
}

// Resolver is the read-only dependency the application engine uses to
// materialize approval steps at submission time.
type Resolver interface {
	Resolve(ctx context.Context, designationID string) (ApproverChain, error)
}

//go:generate mockgen -source=designation_service.go -destination=mock/designation_service_mock.go -package=mock
type Service interface {
	Resolver
	Create(ctx context.Context, req UpsertDesignationRequest) (DesignationResponse, error)
	GetAll(ctx context.Context) ([]DesignationResponse, error)
	GetByID(ctx context.Context, id string) (DesignationResponse, error)
	Update(ctx context.Context, id string, req UpsertDesignationRequest) (DesignationResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("designation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("designation.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Resolve(ctx context.Context, designationID string) (ApproverChain, error) {
	if _, err := uuid.Parse(designationID); err != nil {
		return ApproverChain{}, designationerrors.ErrInvalidDesignationID
	}

	d, err := s.repo.FindByID(ctx, designationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApproverChain{}, designationerrors.ErrDesignationNotFound
		}
		return ApproverChain{}, err
	}

	if d.Level1ApproverID == nil || d.Level2ApproverID == nil || d.Level3ApproverID == nil {
		return ApproverChain{}, designationerrors.ErrApproverChainNotConfigured
	}

	return ApproverChain{
		Level1: *d.Level1ApproverID,
		Level2: *d.Level2ApproverID,
		Level3: *d.Level3ApproverID,
	}, nil
}

func (s *service) Create(ctx context.Context, req UpsertDesignationRequest) (DesignationResponse, error) {
	s.logger.Debug("create designation requested", zap.String("name", req.Name))

	d := &Designation{
		ID:               uuid.New(),
		Name:             req.Name,
		ProvincialOffice: req.ProvincialOffice,
	}
	var err error
	if d.Level1ApproverID, err = parseApproverID(req.Level1ApproverID); err != nil {
		return DesignationResponse{}, err
	}
	if d.Level2ApproverID, err = parseApproverID(req.Level2ApproverID); err != nil {
		return DesignationResponse{}, err
	}
	if d.Level3ApproverID, err = parseApproverID(req.Level3ApproverID); err != nil {
		return DesignationResponse{}, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("create designation persist failed", zap.Error(err))
		return DesignationResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create designation success", zap.String("designation_id", d.ID.String()))
	return mapToResponse(*d), nil
}

func (s *service) GetAll(ctx context.Context) ([]DesignationResponse, error) {
	ds, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]DesignationResponse, len(ds))
	for i, d := range ds {
		resp[i] = mapToResponse(d)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (DesignationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DesignationResponse{}, designationerrors.ErrInvalidDesignationID
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DesignationResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*d), nil
}

func (s *service) Update(ctx context.Context, id string, req UpsertDesignationRequest) (DesignationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DesignationResponse{}, designationerrors.ErrInvalidDesignationID
	}

	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DesignationResponse{}, mapRepositoryError(err)
	}

	d.Name = req.Name
	d.ProvincialOffice = req.ProvincialOffice
	if d.Level1ApproverID, err = parseApproverID(req.Level1ApproverID); err != nil {
		return DesignationResponse{}, err
	}
	if d.Level2ApproverID, err = parseApproverID(req.Level2ApproverID); err != nil {
		return DesignationResponse{}, err
	}
	if d.Level3ApproverID, err = parseApproverID(req.Level3ApproverID); err != nil {
		return DesignationResponse{}, err
	}

	if err := s.repo.Update(ctx, d); err != nil {
		s.logger.Error("update designation persist failed", zap.String("designation_id", id), zap.Error(err))
		return DesignationResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("update designation success", zap.String("designation_id", id))
	return mapToResponse(*d), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return designationerrors.ErrInvalidDesignationID
	}
	return s.repo.Delete(ctx, id)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return designationerrors.ErrDesignationNotFound
	}
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_designation_name") {
		return designationerrors.ErrDesignationAlreadyExists
	}
	return err
}

func parseApproverID(v *string) (*uuid.UUID, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, apperror.InvalidField("Approver Id")
	}
	return &id, nil
}

func mapToResponse(d Designation) DesignationResponse {
	resp := DesignationResponse{
		ID:               d.ID.String(),
		Name:             d.Name,
		ProvincialOffice: d.ProvincialOffice,
	}
	if d.Level1ApproverID != nil {
		v := d.Level1ApproverID.String()
		resp.Level1ApproverID = &v
	}
	if d.Level2ApproverID != nil {
		v := d.Level2ApproverID.String()
		resp.Level2ApproverID = &v
	}
	if d.Level3ApproverID != nil {
		v := d.Level3ApproverID.String()
		resp.Level3ApproverID = &v
	}
	return resp
}
