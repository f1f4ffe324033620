package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	applicationerrors "go-cto/internal/application/errors"
	"go-cto/internal/credit"
	"go-cto/internal/designation"
	designationerrors "go-cto/internal/designation/errors"
	"go-cto/internal/employee"
	"go-cto/internal/events"
	"go-cto/internal/messaging/kafka"
	"go-cto/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=application_service.go -destination=mock/application_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, req SubmitApplicationRequest) (ApplicationResponse, error)
	Decide(ctx context.Context, applicationID string, req DecideRequest) (ApplicationResponse, error)
	GetAll(ctx context.Context) ([]ApplicationResponse, error)
	GetMine(ctx context.Context) ([]ApplicationResponse, error)
	GetPendingForApprover(ctx context.Context) ([]ApplicationResponse, error)
	GetByID(ctx context.Context, id string) (ApplicationResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	credits   credit.Repository
	employees employee.Repository
	approvers designation.Resolver
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	credits credit.Repository,
	employees employee.Repository,
	approvers designation.Resolver,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("application.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("application.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		credits:   credits,
		employees: employees,
		approvers: approvers,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, req SubmitApplicationRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	actorID := contextutil.GetActorID(ctx)
	if _, err := uuid.Parse(actorID); err != nil {
		return ApplicationResponse{}, applicationerrors.ErrInvalidActorID
	}

	requestedHours := decimal.NewFromFloat(req.RequestedHours).Round(2)
	if !requestedHours.IsPositive() {
		return ApplicationResponse{}, applicationerrors.ErrInvalidRequestedHours
	}

	dateFrom, dateTo, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return ApplicationResponse{}, err
	}

	applicant, err := s.employees.FindByID(ctx, actorID)
	if err != nil {
		return ApplicationResponse{}, employeeLookupError(err)
	}

	chain, err := s.resolveChain(ctx, applicant, req.ApproverChain)
	if err != nil {
		return ApplicationResponse{}, err
	}

	s.logger.Debug("submit application requested",
		zap.String("request_id", rid),
		zap.String("employee_id", actorID),
		zap.String("requested_hours", requestedHours.String()),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	creditsTx := s.credits.WithTx(tx)

	entries, err := creditsTx.FindActiveEntriesForUpdate(ctx, actorID)
	if err != nil {
		return ApplicationResponse{}, err
	}

	app := &CtoApplication{
		ID:             uuid.New(),
		EmployeeID:     applicant.ID,
		RequestedHours: requestedHours,
		Reason:         req.Reason,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		Status:         StatusPending,
	}

	// Oldest credit first. Each touched entry's reservation is a
	// conditional update, so a concurrent draw on the same entry aborts
	// this transaction instead of overspending.
	needed := requestedHours
	for _, entry := range entries {
		if !needed.IsPositive() {
			break
		}
		draw := decimal.Min(entry.RemainingHours, needed)
		if !draw.IsPositive() {
			continue
		}
		ok, err := creditsTx.Reserve(ctx, entry.ID.String(), draw)
		if err != nil {
			return ApplicationResponse{}, err
		}
		if !ok {
			return ApplicationResponse{}, applicationerrors.ErrReservationConflict
		}
		app.Allocations = append(app.Allocations, MemoAllocation{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			CreditID:      entry.CreditID,
			AppliedHours:  draw,
		})
		needed = needed.Sub(draw)
	}
	if needed.IsPositive() {
		s.logger.Info("submit application refused, insufficient balance",
			zap.String("request_id", rid),
			zap.String("employee_id", actorID),
			zap.String("shortfall_hours", needed.String()),
		)
		return ApplicationResponse{}, applicationerrors.ErrInsufficientBalance
	}

	approverIDs := []uuid.UUID{chain.Level1, chain.Level2, chain.Level3}
	for i, approverID := range approverIDs {
		app.Steps = append(app.Steps, ApprovalStep{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			Level:         i + 1,
			ApproverID:    approverID,
			Status:        StepStatusPending,
		})
	}

	if err := qtx.Create(ctx, app); err != nil {
		s.logger.Error("submit application persist failed", zap.String("request_id", rid), zap.Error(err))
		return ApplicationResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, events.ApplicationLifecycleEvent{
		EventType:      events.EventApplicationSubmitted,
		Kind:           events.KindNextApprover,
		ApplicationID:  app.ID.String(),
		EmployeeID:     applicant.ID.String(),
		EmployeeName:   applicant.FullName,
		EmployeeEmail:  applicant.Email,
		ApproverID:     chain.Level1.String(),
		ApproverEmail:  s.approverEmail(ctx, chain.Level1),
		Level:          1,
		RequestedHours: requestedHours.InexactFloat64(),
	}); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ApplicationResponse{}, err
	}

	s.logger.Info("submit application success",
		zap.String("request_id", rid),
		zap.String("application_id", app.ID.String()),
		zap.String("employee_id", actorID),
		zap.Int("batches_drawn", len(app.Allocations)),
	)
	return mapAppToResponse(*app), nil
}

func (s *service) Decide(ctx context.Context, applicationID string, req DecideRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	actorID := contextutil.GetActorID(ctx)
	if _, err := uuid.Parse(actorID); err != nil {
		return ApplicationResponse{}, applicationerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(applicationID); err != nil {
		return ApplicationResponse{}, applicationerrors.ErrInvalidApplicationID
	}
	decision := req.NormalizedDecision()
	if decision == "" {
		return ApplicationResponse{}, applicationerrors.ErrInvalidDecision
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	creditsTx := s.credits.WithTx(tx)
	employeesTx := s.employees.WithTx(tx)

	app, err := qtx.GetForUpdate(ctx, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ApplicationResponse{}, applicationerrors.ErrApplicationNotFound
		}
		return ApplicationResponse{}, err
	}
	if app.Status != StatusPending {
		return ApplicationResponse{}, applicationerrors.ErrApplicationAlreadyFinal
	}

	steps, err := qtx.FindStepsForUpdate(ctx, applicationID)
	if err != nil {
		return ApplicationResponse{}, err
	}

	var current *ApprovalStep
	for i := range steps {
		if steps[i].ApproverID.String() == actorID {
			current = &steps[i]
			break
		}
	}
	if current == nil {
		return ApplicationResponse{}, applicationerrors.ErrNotAnApprover
	}

	// Ordering guard: every lower level must already be approved.
	for _, step := range steps {
		if step.Level < current.Level && step.Status != StepStatusApproved {
			return ApplicationResponse{}, applicationerrors.OutOfOrder(step.Level)
		}
	}
	// Re-entrancy guard: a decided step never moves again.
	if current.Status != StepStatusPending {
		return ApplicationResponse{}, applicationerrors.ErrStepAlreadyProcessed
	}

	now := time.Now().UTC()
	event := events.ApplicationLifecycleEvent{
		ApplicationID:  applicationID,
		EmployeeID:     app.EmployeeID.String(),
		ApproverID:     actorID,
		Level:          current.Level,
		RequestedHours: app.RequestedHours.InexactFloat64(),
		Remarks:        req.Remarks,
	}
	if applicant, err := s.employees.FindByID(ctx, app.EmployeeID.String()); err == nil {
		event.EmployeeName = applicant.FullName
		event.EmployeeEmail = applicant.Email
	}

	switch decision {
	case DecisionApprove:
		ok, err := qtx.ApproveStep(ctx, current.ID.String(), now)
		if err != nil {
			return ApplicationResponse{}, err
		}
		if !ok {
			return ApplicationResponse{}, applicationerrors.ErrStepAlreadyProcessed
		}
		current.Status = StepStatusApproved

		if nextPending := nextPendingStep(steps); nextPending != nil {
			event.EventType = events.EventApplicationAdvanced
			event.Kind = events.KindNextApprover
			event.ApproverID = nextPending.ApproverID.String()
			event.ApproverEmail = s.approverEmail(ctx, nextPending.ApproverID)
			event.Level = nextPending.Level
		} else {
			if err := s.commitUsage(ctx, qtx, creditsTx, employeesTx, app); err != nil {
				return ApplicationResponse{}, err
			}
			event.EventType = events.EventApplicationApproved
			event.Kind = events.KindFinalApproval
		}

	case DecisionReject:
		ok, err := qtx.RejectStep(ctx, current.ID.String(), req.Remarks, now)
		if err != nil {
			return ApplicationResponse{}, err
		}
		if !ok {
			return ApplicationResponse{}, applicationerrors.ErrStepAlreadyProcessed
		}
		if err := s.releaseReservations(ctx, qtx, creditsTx, app, now); err != nil {
			return ApplicationResponse{}, err
		}
		event.EventType = events.EventApplicationRejected
		event.Kind = events.KindRejection
	}

	if err := s.enqueueEvent(ctx, tx, event); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ApplicationResponse{}, err
	}

	s.logger.Info("decision applied",
		zap.String("request_id", rid),
		zap.String("application_id", applicationID),
		zap.String("approver_id", actorID),
		zap.Int("level", current.Level),
		zap.String("decision", decision),
	)

	return s.GetByID(ctx, applicationID)
}

// commitUsage is the final-approval transfer: reserved hours become used
// on every allocation and the aggregate balance is debited once.
func (s *service) commitUsage(ctx context.Context, qtx Repository, creditsTx credit.Repository, employeesTx employee.Repository, app *CtoApplication) error {
	allocs, err := qtx.FindAllocations(ctx, app.ID.String())
	if err != nil {
		return err
	}
	for _, alloc := range allocs {
		ok, err := creditsTx.CommitUsage(ctx, alloc.CreditID.String(), app.EmployeeID.String(), alloc.AppliedHours)
		if err != nil {
			return err
		}
		if !ok {
			return applicationerrors.ErrReservationConflict
		}
	}

	ok, err := employeesTx.DebitBalance(ctx, app.EmployeeID.String(), app.RequestedHours)
	if err != nil {
		return err
	}
	if !ok {
		return applicationerrors.ErrReservationConflict
	}

	now := time.Now().UTC()
	ok, err = qtx.SetStatus(ctx, app.ID.String(), StatusPending, StatusApproved, &now)
	if err != nil {
		return err
	}
	if !ok {
		return applicationerrors.ErrApplicationAlreadyFinal
	}
	return nil
}

// releaseReservations undoes every allocation's hold. Rejection is
// terminal at whatever level it happens, so higher steps stay PENDING.
func (s *service) releaseReservations(ctx context.Context, qtx Repository, creditsTx credit.Repository, app *CtoApplication, now time.Time) error {
	allocs, err := qtx.FindAllocations(ctx, app.ID.String())
	if err != nil {
		return err
	}
	for _, alloc := range allocs {
		ok, err := creditsTx.Release(ctx, alloc.CreditID.String(), app.EmployeeID.String(), alloc.AppliedHours)
		if err != nil {
			return err
		}
		if !ok {
			return applicationerrors.ErrReservationConflict
		}
	}

	ok, err := qtx.SetStatus(ctx, app.ID.String(), StatusPending, StatusRejected, &now)
	if err != nil {
		return err
	}
	if !ok {
		return applicationerrors.ErrApplicationAlreadyFinal
	}
	return nil
}

func (s *service) GetAll(ctx context.Context) ([]ApplicationResponse, error) {
	apps, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapAppsToResponse(apps), nil
}

func (s *service) GetMine(ctx context.Context) ([]ApplicationResponse, error) {
	actorID := contextutil.GetActorID(ctx)
	if _, err := uuid.Parse(actorID); err != nil {
		return nil, applicationerrors.ErrInvalidActorID
	}
	apps, err := s.repo.FindByEmployee(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return mapAppsToResponse(apps), nil
}

func (s *service) GetPendingForApprover(ctx context.Context) ([]ApplicationResponse, error) {
	actorID := contextutil.GetActorID(ctx)
	if _, err := uuid.Parse(actorID); err != nil {
		return nil, applicationerrors.ErrInvalidActorID
	}
	apps, err := s.repo.FindPendingByApprover(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return mapAppsToResponse(apps), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ApplicationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ApplicationResponse{}, applicationerrors.ErrInvalidApplicationID
	}
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ApplicationResponse{}, mapRepositoryError(err)
	}
	return mapAppToResponse(*app), nil
}

func (s *service) resolveChain(ctx context.Context, applicant *employee.Employee, override *ApproverChainInput) (designation.ApproverChain, error) {
	if override != nil {
		ids := make([]uuid.UUID, 0, approvalLevels)
		seen := map[string]bool{}
		for _, raw := range []string{override.Level1, override.Level2, override.Level3} {
			id, err := uuid.Parse(raw)
			if err != nil {
				return designation.ApproverChain{}, applicationerrors.ErrUnknownApprover
			}
			if seen[id.String()] {
				return designation.ApproverChain{}, applicationerrors.ErrDuplicateApprover
			}
			seen[id.String()] = true
			ids = append(ids, id)
		}

		found, err := s.employees.FindByIDs(ctx, []string{ids[0].String(), ids[1].String(), ids[2].String()})
		if err != nil {
			return designation.ApproverChain{}, err
		}
		if len(found) != approvalLevels {
			return designation.ApproverChain{}, applicationerrors.ErrUnknownApprover
		}
		return designation.ApproverChain{Level1: ids[0], Level2: ids[1], Level3: ids[2]}, nil
	}

	if applicant.DesignationID == nil {
		return designation.ApproverChain{}, designationerrors.ErrApproverChainNotConfigured
	}
	chain, err := s.approvers.Resolve(ctx, applicant.DesignationID.String())
	if err != nil {
		return designation.ApproverChain{}, err
	}
	// Designation rows are free-form; the three-approver rule holds here too.
	if chain.Level1 == chain.Level2 || chain.Level1 == chain.Level3 || chain.Level2 == chain.Level3 {
		return designation.ApproverChain{}, applicationerrors.ErrDuplicateApprover
	}
	return chain, nil
}

func (s *service) approverEmail(ctx context.Context, approverID uuid.UUID) string {
	approver, err := s.employees.FindByID(ctx, approverID.String())
	if err != nil {
		s.logger.Warn("approver lookup for notification failed",
			zap.String("approver_id", approverID.String()),
			zap.Error(err),
		)
		return ""
	}
	return approver.Email
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, event events.ApplicationLifecycleEvent) error {
	event.RequestID = contextutil.GetRequestID(ctx)
	event.OccurredAt = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "cto_application",
		AggregateID:   event.ApplicationID,
		EventType:     event.EventType,
		Topic:         events.ApplicationLifecycleTopic,
		Payload:       payload,
	})
}

func nextPendingStep(steps []ApprovalStep) *ApprovalStep {
	for i := range steps {
		if steps[i].Status == StepStatusPending {
			return &steps[i]
		}
	}
	return nil
}

func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	if from == "" && to == "" {
		return nil, nil, nil
	}
	if from == "" || to == "" {
		return nil, nil, applicationerrors.ErrInvalidDateRange
	}
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, nil, applicationerrors.ErrInvalidDateRange
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, nil, applicationerrors.ErrInvalidDateRange
	}
	if t.Before(f) {
		return nil, nil, applicationerrors.ErrInvalidDateRange
	}
	return &f, &t, nil
}

func mapAppsToResponse(apps []CtoApplication) []ApplicationResponse {
	resp := make([]ApplicationResponse, len(apps))
	for i, app := range apps {
		resp[i] = mapAppToResponse(app)
	}
	return resp
}

func mapAppToResponse(app CtoApplication) ApplicationResponse {
	resp := ApplicationResponse{
		ID:             app.ID.String(),
		EmployeeID:     app.EmployeeID.String(),
		RequestedHours: app.RequestedHours.InexactFloat64(),
		Reason:         app.Reason,
		Status:         app.Status,
	}
	if app.DateFrom != nil {
		v := app.DateFrom.Format("2006-01-02")
		resp.DateFrom = &v
	}
	if app.DateTo != nil {
		v := app.DateTo.Format("2006-01-02")
		resp.DateTo = &v
	}
	if app.DateCompleted != nil {
		v := app.DateCompleted.Format(time.RFC3339)
		resp.DateCompleted = &v
	}
	for _, step := range app.Steps {
		sr := ApprovalStepResponse{
			ID:         step.ID.String(),
			Level:      step.Level,
			ApproverID: step.ApproverID.String(),
			Status:     step.Status,
			Remarks:    step.Remarks,
		}
		if step.ReviewedAt != nil {
			v := step.ReviewedAt.Format(time.RFC3339)
			sr.ReviewedAt = &v
		}
		resp.Steps = append(resp.Steps, sr)
	}
	for _, alloc := range app.Allocations {
		resp.Allocations = append(resp.Allocations, MemoAllocationResponse{
			CreditID:     alloc.CreditID.String(),
			AppliedHours: alloc.AppliedHours.InexactFloat64(),
		})
	}
	return resp
}
