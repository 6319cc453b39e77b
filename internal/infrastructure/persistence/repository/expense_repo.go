package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antonkh/budget-approval/internal/application/port"
	"github.com/antonkh/budget-approval/internal/domain/entity"
	"go.uber.org/zap"
)

// ExpenseRepository implements port.ExpenseRepository over sqlite
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `
	id, amount, expense_item, expense_group, partner, comment, period,
	payment_method, approvals_needed, approvals_received, status, approved_by,
	submitter_chat_id, created_at, updated_at
`

// Create inserts a new expense record and assigns its id
func (r *ExpenseRepository) Create(ctx context.Context, rec *entity.ExpenseRecord) error {
	query := `
		INSERT INTO expense_records (
			amount, expense_item, expense_group, partner, comment, period,
			payment_method, approvals_needed, approvals_received, status,
			approved_by, submitter_chat_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		rec.Amount,
		rec.ExpenseItem,
		rec.ExpenseGroup,
		rec.Partner,
		rec.Comment,
		rec.Period,
		rec.PaymentMethod,
		rec.ApprovalsNeeded,
		rec.ApprovalsReceived,
		rec.Status.String(),
		rec.ApprovedBy,
		rec.SubmitterChatID,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense record", zap.Error(err))
		return fmt.Errorf("failed to create expense record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// GetByID retrieves an expense record by id; (nil, nil) when absent
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*entity.ExpenseRecord, error) {
	query := `SELECT` + expenseColumns + `FROM expense_records WHERE id = ?`

	rec, err := scanExpense(executorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense record", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense record: %w", err)
	}

	return rec, nil
}

// UpdateDecision sets the outcome of one approval transition
func (r *ExpenseRepository) UpdateDecision(ctx context.Context, id int64, status entity.Status, approvalsReceived int, approvedBy string) error {
	query := `
		UPDATE expense_records
		SET status = ?, approvals_received = ?, approved_by = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		status.String(), approvalsReceived, approvedBy, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update decision",
			zap.Int64("id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update decision: %w", err)
	}

	return nil
}

// UpdateStatus updates the status of an expense record
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id int64, status entity.Status) error {
	query := `UPDATE expense_records SET status = ?, updated_at = ? WHERE id = ?`

	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query, status.String(), time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update status",
			zap.Int64("id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

// ListUnpaid retrieves every record that is neither paid nor rejected, in
// insertion order
func (r *ExpenseRepository) ListUnpaid(ctx context.Context) ([]*entity.ExpenseRecord, error) {
	query := `
		SELECT` + expenseColumns + `
		FROM expense_records
		WHERE status != ? AND status != ?
		ORDER BY id
	`

	rows, err := executorFrom(ctx, r.db).QueryContext(ctx, query,
		entity.StatusPaid.String(), entity.StatusRejected.String())
	if err != nil {
		r.logger.Error("Failed to list unpaid records", zap.Error(err))
		return nil, fmt.Errorf("failed to list unpaid records: %w", err)
	}
	defer rows.Close()

	var records []*entity.ExpenseRecord
	for rows.Next() {
		rec, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*entity.ExpenseRecord, error) {
	var rec entity.ExpenseRecord
	var status string
	var approvedBy sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.Amount,
		&rec.ExpenseItem,
		&rec.ExpenseGroup,
		&rec.Partner,
		&rec.Comment,
		&rec.Period,
		&rec.PaymentMethod,
		&rec.ApprovalsNeeded,
		&rec.ApprovalsReceived,
		&status,
		&approvedBy,
		&rec.SubmitterChatID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = entity.Status(status)
	if approvedBy.Valid {
		rec.ApprovedBy = approvedBy.String
	}

	return &rec, nil
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
