package service

import (
	"context"
	"errors"
	"testing"

	"github.com/antonkh/budget-approval/internal/domain/entity"
	"github.com/antonkh/budget-approval/internal/domain/event"
)

type mockLedger struct {
	appended []*entity.ExpenseRecord
	err      error
}

func (m *mockLedger) Append(ctx context.Context, rec *entity.ExpenseRecord) error {
	m.appended = append(m.appended, rec)
	return m.err
}

func TestArchiveService_OnPaid(t *testing.T) {
	ledger := &mockLedger{}
	svc := NewArchiveService(ledger, &mockLogger{}).(*archiveServiceImpl)

	rec := &entity.ExpenseRecord{ID: 9, Status: entity.StatusPaid, ApprovedBy: "@head"}
	evt := event.NewEvent(event.TypeRecordPaid, rec, nil)

	if err := svc.onPaid(context.Background(), evt); err != nil {
		t.Fatalf("onPaid() failed: %v", err)
	}

	if len(ledger.appended) != 1 || ledger.appended[0].ID != 9 {
		t.Errorf("appended = %v, want record 9", ledger.appended)
	}
}

func TestArchiveService_AppendFailureDoesNotPropagate(t *testing.T) {
	ledger := &mockLedger{err: errors.New("workbook locked")}
	svc := NewArchiveService(ledger, &mockLogger{}).(*archiveServiceImpl)

	rec := &entity.ExpenseRecord{ID: 9, Status: entity.StatusPaid}
	evt := event.NewEvent(event.TypeRecordPaid, rec, nil)

	// The Paid status in the primary store is authoritative; archive failures
	// are logged only
	if err := svc.onPaid(context.Background(), evt); err != nil {
		t.Errorf("onPaid() = %v, want nil", err)
	}
}
