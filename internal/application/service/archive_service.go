package service

import (
	"context"

	"github.com/antonkh/budget-approval/internal/application/dispatcher"
	"github.com/antonkh/budget-approval/internal/application/port"
	"github.com/antonkh/budget-approval/internal/domain/event"
)

// ArchiveService exports paid records to the external ledger. The export is
// fire-and-forget: a failed append is logged and never revisits the record's
// Paid status, which is already authoritative in the primary store.
type ArchiveService interface {
	// Register subscribes the archive handler on the dispatcher
	Register(d dispatcher.Dispatcher)
}

type archiveServiceImpl struct {
	ledger port.Ledger
	logger Logger
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(ledger port.Ledger, logger Logger) ArchiveService {
	return &archiveServiceImpl{
		ledger: ledger,
		logger: logger,
	}
}

// Register subscribes the archive handler on the dispatcher
func (s *archiveServiceImpl) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeRecordPaid, "ledger-archive", s.onPaid)
}

func (s *archiveServiceImpl) onPaid(ctx context.Context, evt *event.Event) error {
	if err := s.ledger.Append(ctx, evt.Record); err != nil {
		s.logger.Error("Failed to archive paid record to ledger",
			"record_id", evt.RecordID,
			"error", err,
		)
	}
	// Archive failure never propagates
	return nil
}
