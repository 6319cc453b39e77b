package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/antonkh/budget-approval/internal/application/service"
	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CardHandler handles Lark card action callbacks. Every approval button carries
// an action token in the card value; pressing it delivers the token here.
type CardHandler struct {
	verifier   *Verifier
	approvals  service.ApprovalService
	notifier   service.NotificationService
	apiTimeout time.Duration
	logger     *zap.Logger
}

// NewCardHandler creates a new card action handler
func NewCardHandler(verifier *Verifier, approvals service.ApprovalService, notifier service.NotificationService, timeout time.Duration, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		verifier:   verifier,
		approvals:  approvals,
		notifier:   notifier,
		apiTimeout: timeout,
		logger:     logger,
	}
}

// CardActionEvent represents a Lark card action callback payload
type CardActionEvent struct {
	Token         string     `json:"token"`
	OpenID        string     `json:"open_id"`
	UserID        string     `json:"user_id"`
	OpenMessageID string     `json:"open_message_id"`
	OpenChatID    string     `json:"open_chat_id"`
	Action        CardAction `json:"action"`
}

// CardAction contains the pressed button value
type CardAction struct {
	Tag   string            `json:"tag"`
	Value map[string]string `json:"value"`
}

// Handle processes incoming card action callbacks
func (h *CardHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	// Check if this is a challenge request
	var challengeCheck struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &challengeCheck); err == nil && challengeCheck.Type == "url_verification" {
		challenge, err := h.verifier.VerifyChallenge(body)
		if err != nil {
			h.logger.Error("Challenge verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Challenge verification failed"})
			return
		}

		h.logger.Info("Challenge verified successfully")
		c.JSON(http.StatusOK, gin.H{"challenge": challenge})
		return
	}

	var event CardActionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("Failed to parse card action", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse card action"})
		return
	}

	if !h.verifier.VerifyToken(event.Token) {
		h.logger.Warn("Invalid verification token on card action")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification token"})
		return
	}

	h.logger.Info("Received card action",
		zap.String("message_id", event.OpenMessageID),
		zap.String("chat_id", event.OpenChatID))

	// Process asynchronously to respond quickly to Lark
	go h.processAction(&event)

	c.JSON(http.StatusOK, gin.H{})
}

// processAction resolves the action token and applies the decision or payment
func (h *CardHandler) processAction(event *CardActionEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in card action processing", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.apiTimeout)
	defer cancel()

	cmd, err := approval.ParseToken(event.Action.Value["token"])
	if err != nil {
		h.logger.Error("Failed to parse action token",
			zap.String("token", event.Action.Value["token"]),
			zap.Error(err))
		h.notifier.NotifyDeveloper(ctx, fmt.Sprintf("Bad action token %q: %v", event.Action.Value["token"], err))
		return
	}

	cmd.Actor = actorIdentity(event)
	cmd.OriginMessageID = event.OpenMessageID

	switch cmd.Kind {
	case approval.KindDecision:
		err = h.approvals.Decide(ctx, cmd)
	case approval.KindPayment:
		err = h.approvals.ConfirmPayment(ctx, cmd)
	default:
		h.logger.Error("Unhandled command kind", zap.String("kind", string(cmd.Kind)))
		return
	}

	if err == nil {
		return
	}

	switch {
	case errors.Is(err, approval.ErrAlreadyFinalized):
		// Stale button press after another approver acted; tell the actor only
		h.notifier.NotifyChat(ctx, event.OpenChatID,
			fmt.Sprintf("Request %d has already been processed.", cmd.RecordID))
	case errors.Is(err, approval.ErrRecordNotFound), errors.Is(err, approval.ErrPaymentNotFound):
		h.notifier.NotifyChat(ctx, event.OpenChatID,
			fmt.Sprintf("Request %d no longer exists or is not awaiting this action.", cmd.RecordID))
	default:
		h.logger.Error("Failed to process card action",
			zap.Int64("record_id", cmd.RecordID),
			zap.Error(err))
		h.notifier.NotifyDeveloper(ctx, fmt.Sprintf("Failed to process action for record %d: %v", cmd.RecordID, err))
	}
}

// actorIdentity picks the approver identity recorded in the approval trail
func actorIdentity(event *CardActionEvent) string {
	if event.UserID != "" {
		return "@" + event.UserID
	}
	return "@" + event.OpenID
}
