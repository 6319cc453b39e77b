package port

import (
	"context"

	"github.com/antonkh/budget-approval/internal/domain/entity"
)

// Button is an inline action affordance attached to a chat message. Token is
// the opaque action token delivered back when the button is pressed.
type Button struct {
	Label string
	Token string
}

// Messenger defines the chat transport operations the engine needs
type Messenger interface {
	// Send delivers a message with optional action buttons to one chat and
	// returns the transport message id
	Send(ctx context.Context, chatID, text string, buttons []Button) (string, error)

	// Edit replaces the text of an existing message and strips its buttons
	Edit(ctx context.Context, messageID, text string) error
}

// Ledger archives completed records to an external spreadsheet. Append is
// best-effort; failures are logged and never affect the record's status.
type Ledger interface {
	Append(ctx context.Context, rec *entity.ExpenseRecord) error
}
