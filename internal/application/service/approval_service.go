package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antonkh/budget-approval/internal/application/port"
	appwf "github.com/antonkh/budget-approval/internal/application/workflow"
	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/antonkh/budget-approval/internal/domain/entity"
	"github.com/antonkh/budget-approval/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Dispatcher is the slice of the event dispatcher the engine uses
type Dispatcher interface {
	Dispatch(ctx context.Context, evt *event.Event) error
	DispatchAsync(ctx context.Context, evt *event.Event)
}

/// ApprovalService owns the expense record lifecycle: it validates transition
// preconditions, applies state transitions inside one transaction per inbound
// event, and emits a domain event after the write commits.
type ApprovalService interface {
	// Submit persists a validated draft and routes it to the head tier
	Submit(ctx context.Context, draft approval.Draft, submitterChatID string) (*entity.ExpenseRecord, error)

	// Decide applies an approve/reject decision from one of the approval tiers
	Decide(ctx context.Context, cmd *approval.Command) error

	// ConfirmPayment marks an approved record as paid
	ConfirmPayment(ctx context.Context, cmd *approval.Command) error

	// ListUnpaid returns every record not yet paid or rejected, oldest first
	ListUnpaid(ctx context.Context) ([]*entity.ExpenseRecord, error)
}

type approvalServiceImpl struct {
	repo       port.ExpenseRepository
	txManager  port.TransactionManager
	dispatcher Dispatcher
	logger     Logger

	// locks serializes events per record id; cross-record events may interleave
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	repo port.ExpenseRepository,
	txManager port.TransactionManager,
	dispatcher Dispatcher,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		repo:       repo,
		txManager:  txManager,
		dispatcher: dispatcher,
		logger:     logger,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// Submit persists a validated draft and routes it to the head tier
func (s *approvalServiceImpl) Submit(ctx context.Context, draft approval.Draft, submitterChatID string) (*entity.ExpenseRecord, error) {
	// The boundary validates drafts before they reach the engine; a violation
	// here is an upstream contract breach, not a user mistake.
	if err := draft.Validate(); err != nil {
		s.logger.Error("Draft violates submission contract", "error", err)
		return nil, err
	}

	now := time.Now()
	rec := &entity.ExpenseRecord{
		Amount:            draft.Amount,
		ExpenseItem:       draft.ExpenseItem,
		ExpenseGroup:      draft.ExpenseGroup,
		Partner:           draft.Partner,
		Comment:           draft.Comment,
		Period:            draft.Period,
		PaymentMethod:     draft.PaymentMethod,
		ApprovalsNeeded:   approval.RequiredApprovals(draft.Amount),
		ApprovalsReceived: 0,
		Status:            entity.StatusNotProcessed,
		ApprovedBy:        "",
		SubmitterChatID:   submitterChatID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, rec)
	})
	if err != nil {
		s.logger.Error("Failed to create expense record", "error", err)
		return nil, fmt.Errorf("create expense record: %w", err)
	}

	s.logger.Info("Expense record submitted",
		"record_id", rec.ID,
		"amount", rec.Amount,
		"approvals_needed", rec.ApprovalsNeeded,
	)

	s.emit(ctx, event.NewEvent(event.TypeRecordSubmitted, rec, map[string]interface{}{
		"submitter_chat_id": submitterChatID,
	}))

	return rec, nil
}

// Decide applies an approve/reject decision from one of the approval tiers.
// The action token the command came from is untrusted; every precondition is
// re-checked against the persisted record.
func (s *approvalServiceImpl) Decide(ctx context.Context, cmd *approval.Command) error {
	lock := s.recordLock(cmd.RecordID)
	lock.Lock()
	defer lock.Unlock()

	var evt *event.Event

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.repo.GetByID(txCtx, cmd.RecordID)
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		if rec == nil {
			return fmt.Errorf("%w: id %d", approval.ErrRecordNotFound, cmd.RecordID)
		}
		if rec.Status.IsTerminal() || rec.Status == entity.StatusApproved {
			return fmt.Errorf("%w: id %d has status %s", approval.ErrAlreadyFinalized, rec.ID, rec.Status)
		}

		machine := appwf.BuildExpenseStateMachine(rec)
		if err := machine.Fire(txCtx, appwf.TriggerFor(cmd.Tier, cmd.Action)); err != nil {
			return err
		}

		newStatus := appwf.StatusFor(machine.State())
		approvalsReceived, approvedBy := decisionOutcome(rec, cmd)

		if err := s.repo.UpdateDecision(txCtx, rec.ID, newStatus, approvalsReceived, approvedBy); err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		rec.Status = newStatus
		rec.ApprovalsReceived = approvalsReceived
		rec.ApprovedBy = approvedBy
		evt = decisionEvent(rec, cmd)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Decision applied",
		"record_id", cmd.RecordID,
		"tier", cmd.Tier,
		"action", cmd.Action,
		"actor", cmd.Actor,
		"new_status", evt.Record.Status,
	)

	s.emit(ctx, evt)
	return nil
}

// ConfirmPayment marks an approved record as paid and hands the snapshot to
// the ledger archive handler
func (s *approvalServiceImpl) ConfirmPayment(ctx context.Context, cmd *approval.Command) error {
	lock := s.recordLock(cmd.RecordID)
	lock.Lock()
	defer lock.Unlock()

	var evt *event.Event

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.repo.GetByID(txCtx, cmd.RecordID)
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		if rec == nil || rec.Status != entity.StatusApproved {
			return fmt.Errorf("%w: id %d", approval.ErrPaymentNotFound, cmd.RecordID)
		}

		if err := s.repo.UpdateStatus(txCtx, rec.ID, entity.StatusPaid); err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		rec.Status = entity.StatusPaid
		evt = event.NewEvent(event.TypeRecordPaid, rec, map[string]interface{}{
			"actor":             cmd.Actor,
			"origin_message_id": cmd.OriginMessageID,
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Record paid", "record_id", cmd.RecordID, "actor", cmd.Actor)

	s.emit(ctx, evt)
	return nil
}

// ListUnpaid returns every record not yet paid or rejected, oldest first
func (s *approvalServiceImpl) ListUnpaid(ctx context.Context) ([]*entity.ExpenseRecord, error) {
	records, err := s.repo.ListUnpaid(ctx)
	if err != nil {
		s.logger.Error("Failed to list unpaid records", "error", err)
		return nil, err
	}
	return records, nil
}

// emit dispatches a committed event. Notification and archive failures are
// logged, never propagated: the state transition is already durable.
func (s *approvalServiceImpl) emit(ctx context.Context, evt *event.Event) {
	if err := s.dispatcher.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event dispatch failed after commit",
			"event_type", evt.Type,
			"record_id", evt.RecordID,
			"error", err,
		)
	}
}

// decisionOutcome computes the tier-marker value and approver list for a
// decision. approvalsReceived marks the tier that acted, not a vote count: a
// head rejection resets to 0 (no approval ever happened), a finance rejection
// keeps 1 so the head approval stays on the audit trail.
func decisionOutcome(rec *entity.ExpenseRecord, cmd *approval.Command) (int, string) {
	if cmd.Action == approval.ActionApprove {
		if cmd.Tier == approval.TierFinance {
			return 2, rec.AppendApprover(cmd.Actor)
		}
		return 1, rec.AppendApprover(cmd.Actor)
	}

	if cmd.Tier == approval.TierFinance {
		return 1, rec.AppendApprover(cmd.Actor)
	}
	return 0, rec.ApprovedBy
}

// decisionEvent selects the event describing the committed transition
func decisionEvent(rec *entity.ExpenseRecord, cmd *approval.Command) *event.Event {
	payload := map[string]interface{}{
		"actor":             cmd.Actor,
		"tier":              cmd.Tier.String(),
		"origin_message_id": cmd.OriginMessageID,
		"submitter_chat_id": cmd.SubmitterChatID,
	}

	switch rec.Status {
	case entity.StatusRejected:
		return event.NewEvent(event.TypeRecordRejected, rec, payload)
	case entity.StatusPending:
		return event.NewEvent(event.TypeForwardedToFinance, rec, payload)
	case entity.StatusApproved:
		return event.NewEvent(event.TypeReadyForPayment, rec, payload)
	default:
		panic("no event for decision outcome status " + rec.Status.String())
	}
}

// recordLock returns the mutex serializing events for one record id
func (s *approvalServiceImpl) recordLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
