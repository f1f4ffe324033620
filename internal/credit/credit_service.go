package credit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	crediterrors "go-cto/internal/credit/errors"
	"go-cto/internal/employee"
	"go-cto/internal/events"
	"go-cto/internal/messaging/kafka"
	"go-cto/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=credit_service.go -destination=mock/credit_service_mock.go -package=mock
type Service interface {
	Issue(ctx context.Context, req IssueCreditRequest) (CreditResponse, error)
	Rollback(ctx context.Context, creditID string) (CreditResponse, error)
	GetAll(ctx context.Context) ([]CreditResponse, error)
	GetByID(ctx context.Context, id string) (CreditResponse, error)
	GetEmployeeCredits(ctx context.Context, employeeID string) (EmployeeCreditSummary, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger employee.Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledger employee.Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("credit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credit.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		outbox: outbox,
		logger: l,
	}
}

func (s *service) Issue(ctx context.Context, req IssueCreditRequest) (CreditResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	actorID := contextutil.GetActorID(ctx)

	issuedBy, err := uuid.Parse(actorID)
	if err != nil {
		return CreditResponse{}, crediterrors.ErrInvalidActorID
	}

	totalHours, err := durationHours(req.Duration)
	if err != nil {
		return CreditResponse{}, err
	}
	if req.MemoNo == "" {
		return CreditResponse{}, crediterrors.ErrMemoNoRequired
	}
	employeeIDs, err := distinctEmployeeIDs(req.EmployeeIDs)
	if err != nil {
		return CreditResponse{}, err
	}

	dateApproved := time.Now().UTC()
	if req.DateApproved != "" {
		dateApproved, err = time.Parse("2006-01-02", req.DateApproved)
		if err != nil {
			return CreditResponse{}, crediterrors.ErrInvalidDateApproved
		}
	}

	s.logger.Debug("issue credit requested",
		zap.String("request_id", rid),
		zap.String("memo_no", req.MemoNo),
		zap.Int("employees", len(employeeIDs)),
		zap.String("total_hours", totalHours.String()),
	)

	known, err := s.ledger.FindByIDs(ctx, employeeIDs)
	if err != nil {
		s.logger.Error("issue credit employee lookup failed", zap.String("request_id", rid), zap.Error(err))
		return CreditResponse{}, err
	}
	if len(known) != len(employeeIDs) {
		return CreditResponse{}, crediterrors.ErrUnknownEmployee
	}

	now := time.Now().UTC()
	batch := &CtoCredit{
		ID:            uuid.New(),
		MemoNo:        req.MemoNo,
		DateApproved:  dateApproved,
		AttachmentRef: req.AttachmentRef,
		Hours:         req.Duration.Hours,
		Minutes:       req.Duration.Minutes,
		TotalHours:    totalHours,
		Status:        StatusCredited,
		IssuedBy:      issuedBy,
	}
	for _, id := range employeeIDs {
		batch.Entries = append(batch.Entries, CreditEntry{
			ID:             uuid.New(),
			CreditID:       batch.ID,
			EmployeeID:     uuid.MustParse(id),
			CreditedHours:  totalHours,
			UsedHours:      decimal.Zero,
			ReservedHours:  decimal.Zero,
			RemainingHours: totalHours,
			Status:         EntryStatusActive,
			DateCredited:   now,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CreditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ltx := s.ledger.WithTx(tx)

	if err := qtx.Create(ctx, batch); err != nil {
		s.logger.Error("issue credit persist failed", zap.String("request_id", rid), zap.Error(err))
		return CreditResponse{}, mapRepositoryError(err)
	}
	for _, id := range employeeIDs {
		ok, err := ltx.AddBalance(ctx, id, totalHours)
		if err != nil {
			s.logger.Error("issue credit balance increment failed",
				zap.String("request_id", rid),
				zap.String("employee_id", id),
				zap.Error(err),
			)
			return CreditResponse{}, err
		}
		if !ok {
			// Employee validated above but deleted before the write.
			return CreditResponse{}, crediterrors.ErrUnknownEmployee
		}
	}

	if err := s.enqueueCreditEvent(ctx, tx, events.EventCreditIssued, batch, employeeIDs, actorID); err != nil {
		return CreditResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return CreditResponse{}, err
	}

	s.logger.Info("issue credit success",
		zap.String("request_id", rid),
		zap.String("credit_id", batch.ID.String()),
		zap.String("memo_no", batch.MemoNo),
		zap.Int("employees", len(employeeIDs)),
	)
	return mapCreditToResponse(*batch), nil
}

func (s *service) Rollback(ctx context.Context, creditID string) (CreditResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	actorID := contextutil.GetActorID(ctx)

	if _, err := uuid.Parse(actorID); err != nil {
		return CreditResponse{}, crediterrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(creditID); err != nil {
		return CreditResponse{}, crediterrors.ErrInvalidCreditID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CreditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ltx := s.ledger.WithTx(tx)

	batch, err := qtx.GetForUpdate(ctx, creditID)
	if err != nil {
		if err == sql.ErrNoRows {
			return CreditResponse{}, crediterrors.ErrCreditNotFound
		}
		return CreditResponse{}, err
	}
	if batch.Status == StatusRolledBack {
		return CreditResponse{}, crediterrors.ErrAlreadyRolledBack
	}

	inFlight, err := qtx.CountInFlight(ctx, creditID)
	if err != nil {
		return CreditResponse{}, err
	}
	if inFlight > 0 {
		s.logger.Warn("rollback refused, credit in use",
			zap.String("request_id", rid),
			zap.String("credit_id", creditID),
			zap.Int64("entries_in_flight", inFlight),
		)
		return CreditResponse{}, crediterrors.ErrCreditInUse
	}

	entries, err := qtx.FindEntriesInBatch(ctx, creditID)
	if err != nil {
		return CreditResponse{}, err
	}

	employeeIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		employeeIDs = append(employeeIDs, e.EmployeeID.String())
		ok, err := ltx.DebitBalance(ctx, e.EmployeeID.String(), e.CreditedHours)
		if err != nil {
			return CreditResponse{}, err
		}
		if !ok {
			// Balance no longer covers the credited hours. The batch
			// itself has no usage, so a concurrent debit raced us.
			return CreditResponse{}, crediterrors.ErrBalanceConflict
		}
	}

	now := time.Now().UTC()
	ok, err := qtx.MarkRolledBack(ctx, creditID, actorID, now)
	if err != nil {
		return CreditResponse{}, err
	}
	if !ok {
		return CreditResponse{}, crediterrors.ErrAlreadyRolledBack
	}
	if err := qtx.MarkEntriesRolledBack(ctx, creditID); err != nil {
		return CreditResponse{}, err
	}

	if err := s.enqueueCreditEvent(ctx, tx, events.EventCreditRolledBack, batch, employeeIDs, actorID); err != nil {
		return CreditResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return CreditResponse{}, err
	}

	s.logger.Info("rollback credit success",
		zap.String("request_id", rid),
		zap.String("credit_id", creditID),
		zap.String("memo_no", batch.MemoNo),
	)

	batch.Status = StatusRolledBack
	rolledBackBy := uuid.MustParse(actorID)
	batch.RolledBackBy = &rolledBackBy
	batch.DateRolledBack = &now
	return mapCreditToResponse(*batch), nil
}

func (s *service) GetAll(ctx context.Context) ([]CreditResponse, error) {
	credits, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	resp := make([]CreditResponse, len(credits))
	for i, c := range credits {
		resp[i] = mapCreditToResponse(c)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (CreditResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return CreditResponse{}, crediterrors.ErrInvalidCreditID
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CreditResponse{}, mapRepositoryError(err)
	}
	return mapCreditToResponse(*c), nil
}

func (s *service) GetEmployeeCredits(ctx context.Context, employeeID string) (EmployeeCreditSummary, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return EmployeeCreditSummary{}, crediterrors.ErrInvalidCreditID
	}
	entries, err := s.repo.FindActiveEntriesByEmployee(ctx, employeeID)
	if err != nil {
		return EmployeeCreditSummary{}, mapRepositoryError(err)
	}

	summary := EmployeeCreditSummary{
		EmployeeID: employeeID,
		Entries:    make([]CreditEntryResponse, len(entries)),
	}
	available := decimal.Zero
	for i, e := range entries {
		available = available.Add(e.RemainingHours)
		summary.Entries[i] = mapEntryToResponse(e)
	}
	summary.AvailableHours = available.InexactFloat64()
	return summary, nil
}

func (s *service) enqueueCreditEvent(ctx context.Context, tx *sql.Tx, eventType string, batch *CtoCredit, employeeIDs []string, actorID string) error {
	payload, err := json.Marshal(events.CreditLifecycleEvent{
		EventType:   eventType,
		RequestID:   contextutil.GetRequestID(ctx),
		CreditID:    batch.ID.String(),
		MemoNo:      batch.MemoNo,
		TotalHours:  batch.TotalHours.InexactFloat64(),
		EmployeeIDs: employeeIDs,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "cto_credit",
		AggregateID:   batch.ID.String(),
		EventType:     eventType,
		Topic:         events.CreditLifecycleTopic,
		Payload:       payload,
	})
}

func durationHours(d DurationInput) (decimal.Decimal, error) {
	if d.Hours < 0 || d.Minutes < 0 || d.Minutes > 59 {
		return decimal.Zero, crediterrors.ErrInvalidDuration
	}
	total := decimal.NewFromInt(int64(d.Hours)).
		Add(decimal.NewFromInt(int64(d.Minutes)).Div(decimal.NewFromInt(60)).Round(2))
	if !total.IsPositive() {
		return decimal.Zero, crediterrors.ErrInvalidDuration
	}
	return total, nil
}

func distinctEmployeeIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, crediterrors.ErrNoEmployees
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, crediterrors.ErrUnknownEmployee
		}
		key := id.String()
		if seen[key] {
			return nil, crediterrors.ErrDuplicateEmployee
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

func mapCreditToResponse(c CtoCredit) CreditResponse {
	resp := CreditResponse{
		ID:            c.ID.String(),
		MemoNo:        c.MemoNo,
		DateApproved:  c.DateApproved.Format("2006-01-02"),
		AttachmentRef: c.AttachmentRef,
		Hours:         c.Hours,
		Minutes:       c.Minutes,
		TotalHours:    c.TotalHours.InexactFloat64(),
		Status:        c.Status,
		IssuedBy:      c.IssuedBy.String(),
	}
	if c.RolledBackBy != nil {
		v := c.RolledBackBy.String()
		resp.RolledBackBy = &v
	}
	if c.DateRolledBack != nil {
		v := c.DateRolledBack.Format(time.RFC3339)
		resp.DateRolledBack = &v
	}
	for _, e := range c.Entries {
		resp.Entries = append(resp.Entries, mapEntryToResponse(e))
	}
	return resp
}

func mapEntryToResponse(e CreditEntry) CreditEntryResponse {
	return CreditEntryResponse{
		ID:             e.ID.String(),
		EmployeeID:     e.EmployeeID.String(),
		CreditedHours:  e.CreditedHours.InexactFloat64(),
		UsedHours:      e.UsedHours.InexactFloat64(),
		ReservedHours:  e.ReservedHours.InexactFloat64(),
		RemainingHours: e.RemainingHours.InexactFloat64(),
		Status:         e.Status,
		DateCredited:   e.DateCredited.Format(time.RFC3339),
	}
}
