package ledger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/antonkh/budget-approval/internal/application/port"
	"github.com/antonkh/budget-approval/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelLedger implements port.Ledger by appending paid records as rows of an
// xlsx workbook. Appends are serialized; the workbook is opened, extended and
// saved per call so the file stays readable between payments.
type ExcelLedger struct {
	path      string
	sheetName string
	logger    *zap.Logger

	mu sync.Mutex
}

// Config holds ledger workbook configuration
type Config struct {
	Path      string
	SheetName string
}

var headerRow = []interface{}{
	"ID", "Paid at", "Amount", "Expense item", "Expense group", "Partner",
	"Comment", "Period", "Payment method", "Approved by",
}

// NewExcelLedger creates a new spreadsheet ledger
func NewExcelLedger(cfg Config, logger *zap.Logger) *ExcelLedger {
	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Payments"
	}

	return &ExcelLedger{
		path:      cfg.Path,
		sheetName: sheetName,
		logger:    logger,
	}
}

// Append adds one paid record to the ledger workbook
func (l *ExcelLedger) Append(ctx context.Context, rec *entity.ExpenseRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, created, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(l.sheetName)
	if err != nil {
		return fmt.Errorf("failed to read ledger sheet: %w", err)
	}

	row := len(rows) + 1
	if created {
		if err := l.writeRow(f, 1, headerRow); err != nil {
			return err
		}
		row = 2
	}

	values := []interface{}{
		rec.ID,
		time.Now().Format("2006-01-02 15:04:05"),
		rec.Amount,
		rec.ExpenseItem,
		rec.ExpenseGroup,
		rec.Partner,
		rec.Comment,
		rec.Period,
		rec.PaymentMethod,
		rec.ApprovedBy,
	}
	if err := l.writeRow(f, row, values); err != nil {
		return err
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("failed to save ledger workbook: %w", err)
	}

	l.logger.Info("Record archived to ledger",
		zap.Int64("record_id", rec.ID),
		zap.String("path", l.path))

	return nil
}

// open loads the workbook, creating it with the ledger sheet when missing
func (l *ExcelLedger) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		index, err := f.NewSheet(l.sheetName)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create ledger sheet: %w", err)
		}
		f.SetActiveSheet(index)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			l.logger.Warn("Failed to remove default sheet", zap.Error(err))
		}
		return f, true, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open ledger workbook: %w", err)
	}

	return f, false, nil
}

func (l *ExcelLedger) writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute ledger cell: %w", err)
	}
	if err := f.SetSheetRow(l.sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.Ledger = (*ExcelLedger)(nil)
