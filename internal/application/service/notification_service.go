package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/antonkh/budget-approval/internal/application/dispatcher"
	"github.com/antonkh/budget-approval/internal/application/port"
	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/antonkh/budget-approval/internal/domain/entity"
	"github.com/antonkh/budget-approval/internal/domain/event"
)

// NotificationService turns committed domain events into outbound chat
// messages: approval requests to the next tier, payment requests to the
// payers, terminal notices to the submitter, and edits of the originating
// message so stale buttons cannot be pressed twice.
type NotificationService interface {
	// Register subscribes the notification handlers on the dispatcher
	Register(d dispatcher.Dispatcher)

	// NotifyChat sends a plain text message to a single chat
	NotifyChat(ctx context.Context, chatID, text string) error

	// NotifyDeveloper reports an operational failure to the developer chat
	NotifyDeveloper(ctx context.Context, text string)
}

type notificationServiceImpl struct {
	messenger       port.Messenger
	groups          approval.Groups
	developerChatID string
	logger          Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(messenger port.Messenger, groups approval.Groups, developerChatID string, logger Logger) NotificationService {
	return &notificationServiceImpl{
		messenger:       messenger,
		groups:          groups,
		developerChatID: developerChatID,
		logger:          logger,
	}
}

// Register subscribes the notification handlers on the dispatcher
func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeRecordSubmitted, "notify-head-tier", s.onSubmitted)
	d.SubscribeNamed(event.TypeForwardedToFinance, "notify-finance-tier", s.onForwardedToFinance)
	d.SubscribeNamed(event.TypeReadyForPayment, "notify-payers", s.onReadyForPayment)
	d.SubscribeNamed(event.TypeRecordRejected, "notify-rejection", s.onRejected)
	d.SubscribeNamed(event.TypeRecordPaid, "confirm-payment", s.onPaid)
}

// onSubmitted asks the head tier to approve a fresh submission
func (s *notificationServiceImpl) onSubmitted(ctx context.Context, evt *event.Event) error {
	rec := evt.Record
	buttons := decisionButtons(approval.TierHead, rec.ID, rec.SubmitterChatID)
	return s.sendToTier(ctx, approval.TierHead, approvalRequestText(rec), buttons)
}

// onForwardedToFinance strips the head-tier buttons and asks the finance tier
func (s *notificationServiceImpl) onForwardedToFinance(ctx context.Context, evt *event.Event) error {
	rec := evt.Record
	s.editOrigin(ctx, evt, "The approval request was forwarded to the finance tier.")

	buttons := decisionButtons(approval.TierFinance, rec.ID, evt.GetPayloadString("submitter_chat_id"))
	return s.sendToTier(ctx, approval.TierFinance, approvalRequestText(rec), buttons)
}

// onReadyForPayment strips the stale buttons and asks the payers to pay
func (s *notificationServiceImpl) onReadyForPayment(ctx context.Context, evt *event.Event) error {
	rec := evt.Record
	s.editOrigin(ctx, evt, "The payment request was approved and is ready to be paid.")

	buttons := []port.Button{{Label: "Paid", Token: approval.PaymentToken(rec.ID)}}
	return s.sendToTier(ctx, approval.TierPayers, paymentRequestText(rec), buttons)
}

// onRejected strips the stale buttons and tells the submitter who rejected
func (s *notificationServiceImpl) onRejected(ctx context.Context, evt *event.Event) error {
	rec := evt.Record
	actor := evt.GetPayloadString("actor")
	tier := approval.Tier(evt.GetPayloadString("tier"))

	if tier == approval.TierHead {
		s.editOrigin(ctx, evt, fmt.Sprintf("Request %d was rejected by the department head.", rec.ID))
	} else {
		s.editOrigin(ctx, evt, fmt.Sprintf("Request %d was rejected.", rec.ID))
	}

	submitter := evt.GetPayloadString("submitter_chat_id")
	if submitter == "" {
		submitter = rec.SubmitterChatID
	}
	return s.NotifyChat(ctx, submitter, fmt.Sprintf("Request %d was rejected by %s.", rec.ID, actor))
}

// onPaid confirms the payment on the originating message
func (s *notificationServiceImpl) onPaid(ctx context.Context, evt *event.Event) error {
	s.editOrigin(ctx, evt, fmt.Sprintf("Request %d was paid.", evt.Record.ID))
	return nil
}

// NotifyChat sends a plain text message to a single chat
func (s *notificationServiceImpl) NotifyChat(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("chat id is empty")
	}
	if _, err := s.messenger.Send(ctx, chatID, text, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// NotifyDeveloper reports an operational failure to the developer chat
func (s *notificationServiceImpl) NotifyDeveloper(ctx context.Context, text string) {
	if s.developerChatID == "" {
		return
	}
	if err := s.NotifyChat(ctx, s.developerChatID, text); err != nil {
		s.logger.Error("Failed to notify developer chat", "error", err)
	}
}

// sendToTier fans a message out to every chat in the tier's recipient group.
// Delivery is best-effort per chat; the first failure is returned after all
// sends were attempted.
func (s *notificationServiceImpl) sendToTier(ctx context.Context, tier approval.Tier, text string, buttons []port.Button) error {
	var firstErr error
	for _, chatID := range s.groups.Recipients(tier) {
		if _, err := s.messenger.Send(ctx, chatID, text, buttons); err != nil {
			s.logger.Error("Failed to send tier notification",
				"tier", tier,
				"chat_id", chatID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// editOrigin strips the stale action buttons from the message that carried the
// pressed button. Best-effort: a failed edit never affects the transition.
func (s *notificationServiceImpl) editOrigin(ctx context.Context, evt *event.Event, text string) {
	messageID := evt.GetPayloadString("origin_message_id")
	if messageID == "" {
		return
	}
	if err := s.messenger.Edit(ctx, messageID, text); err != nil {
		s.logger.Error("Failed to edit originating message",
			"message_id", messageID,
			"record_id", evt.RecordID,
			"error", err,
		)
	}
}

// decisionButtons builds the approve/reject affordances for a tier
func decisionButtons(tier approval.Tier, recordID int64, submitterChatID string) []port.Button {
	return []port.Button{
		{Label: "Approve", Token: approval.DecisionToken(tier, approval.ActionApprove, recordID, submitterChatID)},
		{Label: "Reject", Token: approval.DecisionToken(tier, approval.ActionReject, recordID, submitterChatID)},
	}
}

// approvalRequestText renders the full record snapshot for an approval tier
func approvalRequestText(rec *entity.ExpenseRecord) string {
	return fmt.Sprintf(
		"Please review payment request %d.\n"+
			"amount: %.2f\nitem: %s\ngroup: %s\npartner: %s\n"+
			"period: %s\npayment method: %s\ncomment: %s",
		rec.ID, rec.Amount, rec.ExpenseItem, rec.ExpenseGroup, rec.Partner,
		rec.Period, rec.PaymentMethod, rec.Comment,
	)
}

// paymentRequestText renders the payment request for the payers group
func paymentRequestText(rec *entity.ExpenseRecord) string {
	return fmt.Sprintf(
		"Payment request %d was approved by %s (%d/%d). Please pay the request. "+
			"amount: %.2f, item: %s, group: %s, partner: %s, period: %s, "+
			"payment method: %s, comment: %s",
		rec.ID, rec.ApprovedBy, rec.ApprovalsReceived, rec.ApprovalsNeeded,
		rec.Amount, rec.ExpenseItem, rec.ExpenseGroup, rec.Partner, rec.Period,
		rec.PaymentMethod, rec.Comment,
	)
}

// RenderUnpaidList formats the unpaid records for a chat reply
func RenderUnpaidList(records []*entity.ExpenseRecord) string {
	if len(records) == 0 {
		return "No unpaid requests found."
	}

	lines := make([]string, 0, len(records))
	for i, rec := range records {
		lines = append(lines, fmt.Sprintf(
			"%d. id: %d, amount: %.2f, item: %s, group: %s, partner: %s, period: %s, "+
				"method: %s, approvals: %d/%d, status: %s, approved by: %s",
			i+1, rec.ID, rec.Amount, rec.ExpenseItem, rec.ExpenseGroup, rec.Partner,
			rec.Period, rec.PaymentMethod, rec.ApprovalsReceived, rec.ApprovalsNeeded,
			rec.Status, rec.ApprovedBy,
		))
	}
	return strings.Join(lines, "\n\n")
}
