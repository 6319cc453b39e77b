package port

import (
	"context"

	"github.com/antonkh/budget-approval/internal/domain/entity"
)

// ExpenseRepository defines persistence operations for ExpenseRecord.
// GetByID returns (nil, nil) when no record exists for the id; absence is
// meaningful, not an error.
type ExpenseRepository interface {
	Create(ctx context.Context, rec *entity.ExpenseRecord) error
	GetByID(ctx context.Context, id int64) (*entity.ExpenseRecord, error)

	// UpdateDecision sets the outcome of one approval transition: the exact
	// status, tier-marker value and approver list computed by the engine.
	UpdateDecision(ctx context.Context, id int64, status entity.Status, approvalsReceived int, approvedBy string) error

	UpdateStatus(ctx context.Context, id int64, status entity.Status) error

	// ListUnpaid returns, in insertion order, every record whose status is
	// neither Paid nor Rejected.
	ListUnpaid(ctx context.Context) ([]*entity.ExpenseRecord, error)
}

// TransactionManager handles database transactions. The transaction is carried
// in the context so repositories participate transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
