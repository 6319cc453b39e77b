package http

import (
	"context"
	"testing"
	"time"

	"github.com/antonkh/budget-approval/internal/application/dispatcher"
	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/antonkh/budget-approval/internal/domain/entity"
	larkadapter "github.com/antonkh/budget-approval/internal/infrastructure/external/lark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockApprovals records service calls
type mockApprovals struct {
	submitted []approval.Draft
	decided   []*approval.Command
	paid      []*approval.Command
	unpaid    []*entity.ExpenseRecord
	err       error
}

func (m *mockApprovals) Submit(ctx context.Context, draft approval.Draft, submitterChatID string) (*entity.ExpenseRecord, error) {
	m.submitted = append(m.submitted, draft)
	if m.err != nil {
		return nil, m.err
	}
	return &entity.ExpenseRecord{ID: 1, SubmitterChatID: submitterChatID}, nil
}

func (m *mockApprovals) Decide(ctx context.Context, cmd *approval.Command) error {
	m.decided = append(m.decided, cmd)
	return m.err
}

func (m *mockApprovals) ConfirmPayment(ctx context.Context, cmd *approval.Command) error {
	m.paid = append(m.paid, cmd)
	return m.err
}

func (m *mockApprovals) ListUnpaid(ctx context.Context) ([]*entity.ExpenseRecord, error) {
	return m.unpaid, m.err
}

// mockNotifier records outbound chat messages
type mockNotifier struct {
	chats    []string
	texts    []string
	devTexts []string
}

func (m *mockNotifier) Register(d dispatcher.Dispatcher) {}

func (m *mockNotifier) NotifyChat(ctx context.Context, chatID, text string) error {
	m.chats = append(m.chats, chatID)
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockNotifier) NotifyDeveloper(ctx context.Context, text string) {
	m.devTexts = append(m.devTexts, text)
}

func newTestEventHandler(approvals *mockApprovals, notifier *mockNotifier) *EventHandler {
	return NewEventHandler(
		NewVerifier(""),
		larkadapter.NewDraftParser(zap.NewNop()),
		approvals,
		notifier,
		5*time.Second,
		zap.NewNop(),
	)
}

func TestExtractText(t *testing.T) {
	text, err := extractText(`{"text":"  /unpaid  "}`)
	require.NoError(t, err)
	assert.Equal(t, "/unpaid", text)

	_, err = extractText(`{broken`)
	require.Error(t, err)
}

func TestEventHandler_HandleSubmit(t *testing.T) {
	approvals := &mockApprovals{}
	notifier := &mockNotifier{}
	h := newTestEventHandler(approvals, notifier)

	h.handleSubmit(context.Background(), "oc_chat",
		"1500.50; office chairs; equipment; Acme Ltd; replacement; 08.26; bank transfer")

	require.Len(t, approvals.submitted, 1)
	assert.Equal(t, 1500.50, approvals.submitted[0].Amount)

	// The submitter gets a confirmation with the record id
	require.Len(t, notifier.texts, 1)
	assert.Equal(t, "oc_chat", notifier.chats[0])
	assert.Contains(t, notifier.texts[0], "Request 1 submitted")
}

func TestEventHandler_HandleSubmit_BadFormat(t *testing.T) {
	approvals := &mockApprovals{}
	notifier := &mockNotifier{}
	h := newTestEventHandler(approvals, notifier)

	h.handleSubmit(context.Background(), "oc_chat", "pay the rent please")

	// Nothing reaches the engine; the submitter gets the format hint
	assert.Empty(t, approvals.submitted)
	require.Len(t, notifier.texts, 1)
	assert.Equal(t, larkadapter.Usage, notifier.texts[0])
}

func TestEventHandler_HandleUnpaid(t *testing.T) {
	approvals := &mockApprovals{
		unpaid: []*entity.ExpenseRecord{
			{ID: 1, Amount: 100, ExpenseItem: "pens", ExpenseGroup: "office", Partner: "A", Period: "08.26", PaymentMethod: "card", ApprovalsNeeded: 1, Status: entity.StatusNotProcessed},
		},
	}
	notifier := &mockNotifier{}
	h := newTestEventHandler(approvals, notifier)

	h.handleUnpaid(context.Background(), "oc_chat")

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "id: 1")
}

func TestEventHandler_HandleUnpaid_Empty(t *testing.T) {
	approvals := &mockApprovals{}
	notifier := &mockNotifier{}
	h := newTestEventHandler(approvals, notifier)

	h.handleUnpaid(context.Background(), "oc_chat")

	require.Len(t, notifier.texts, 1)
	assert.Equal(t, "No unpaid requests found.", notifier.texts[0])
}

func TestEventHandler_HandleStart(t *testing.T) {
	approvals := &mockApprovals{}
	notifier := &mockNotifier{}
	h := newTestEventHandler(approvals, notifier)

	h.handleStart(context.Background(), "oc_chat")

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "/submit")
	assert.Contains(t, notifier.texts[0], "oc_chat")
}
