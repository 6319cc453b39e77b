package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/antonkh/budget-approval/internal/application/service"
	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/antonkh/budget-approval/internal/infrastructure/external/lark"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const eventTypeMessageReceive = "im.message.receive_v1"

// EventHandler handles Lark event subscription callbacks and dispatches chat
// commands: /start, /submit and /unpaid.
type EventHandler struct {
	verifier   *Verifier
	parser     *lark.DraftParser
	approvals  service.ApprovalService
	notifier   service.NotificationService
	apiTimeout time.Duration
	logger     *zap.Logger
}

// NewEventHandler creates a new event subscription handler
func NewEventHandler(verifier *Verifier, parser *lark.DraftParser, approvals service.ApprovalService, notifier service.NotificationService, timeout time.Duration, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		verifier:   verifier,
		parser:     parser,
		approvals:  approvals,
		notifier:   notifier,
		apiTimeout: timeout,
		logger:     logger,
	}
}

// MessageEvent represents a Lark v2 message receive event
type MessageEvent struct {
	Schema string      `json:"schema"`
	Header EventHeader `json:"header"`
	Event  struct {
		Sender struct {
			SenderID struct {
				OpenID string `json:"open_id"`
				UserID string `json:"user_id"`
			} `json:"sender_id"`
		} `json:"sender"`
		Message struct {
			MessageID   string `json:"message_id"`
			ChatID      string `json:"chat_id"`
			MessageType string `json:"message_type"`
			Content     string `json:"content"`
		} `json:"message"`
	} `json:"event"`
}

// EventHeader contains event metadata
type EventHeader struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	CreateTime string `json:"create_time"`
	Token      string `json:"token"`
	AppID      string `json:"app_id"`
	TenantKey  string `json:"tenant_key"`
}

// Handle processes incoming event subscription requests
func (h *EventHandler) Handle(c *gin.Context) {
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

	var event MessageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("Failed to parse event", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event"})
		return
	}

	if !h.verifier.VerifyToken(event.Header.Token) {
		h.logger.Warn("Invalid verification token on event")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification token"})
		return
	}

	if event.Header.EventType != eventTypeMessageReceive {
		h.logger.Info("Ignoring unsupported event type",
			zap.String("event_type", event.Header.EventType))
		c.JSON(http.StatusOK, gin.H{"message": "Event type not supported"})
		return
	}

	h.logger.Info("Received message event",
		zap.String("event_id", event.Header.EventID),
		zap.String("chat_id", event.Event.Message.ChatID))

	// Process asynchronously to respond quickly to Lark
	go h.processMessage(&event)

	c.JSON(http.StatusOK, gin.H{"message": "Event received"})
}

// processMessage routes a chat message to the matching command
func (h *EventHandler) processMessage(event *MessageEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in message processing", zap.Any("panic", r))
		}
	}()

	if event.Event.Message.MessageType != "text" {
		return
	}

	text, err := extractText(event.Event.Message.Content)
	if err != nil {
		h.logger.Error("Failed to decode message content", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.apiTimeout)
	defer cancel()

	chatID := event.Event.Message.ChatID

	switch {
	case strings.HasPrefix(text, "/start"):
		h.handleStart(ctx, chatID)
	case strings.HasPrefix(text, "/submit"):
		h.handleSubmit(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/submit")))
	case strings.HasPrefix(text, "/unpaid"):
		h.handleUnpaid(ctx, chatID)
	default:
		// Not a command; the bot stays silent in regular conversation
	}
}

func (h *EventHandler) handleStart(ctx context.Context, chatID string) {
	help := fmt.Sprintf(
		"Hi! I route expense requests through the approval chain.\n\n"+
			"/submit %s\n"+
			"/unpaid lists every request that has not been paid or rejected yet.\n\n"+
			"This chat id: %s",
		"amount; expense item; expense group; partner; comment; period; payment method",
		chatID)
	if err := h.notifier.NotifyChat(ctx, chatID, help); err != nil {
		h.logger.Error("Failed to send help message", zap.Error(err))
	}
}

func (h *EventHandler) handleSubmit(ctx context.Context, chatID, payload string) {
	draft, err := h.parser.Parse(payload)
	if err != nil {
		if errors.Is(err, approval.ErrInvalidDraft) {
			if nerr := h.notifier.NotifyChat(ctx, chatID, lark.Usage); nerr != nil {
				h.logger.Error("Failed to send format hint", zap.Error(nerr))
			}
			return
		}
		h.logger.Error("Failed to parse submission", zap.Error(err))
		return
	}

	rec, err := h.approvals.Submit(ctx, draft, chatID)
	if err != nil {
		h.logger.Error("Failed to submit expense request",
			zap.String("chat_id", chatID),
			zap.Error(err))
		h.notifier.NotifyDeveloper(ctx, fmt.Sprintf("Failed to submit request from chat %s: %v", chatID, err))
		return
	}

	if err := h.notifier.NotifyChat(ctx, chatID,
		fmt.Sprintf("Request %d submitted for approval.", rec.ID)); err != nil {
		h.logger.Error("Failed to confirm submission", zap.Error(err))
	}
}

func (h *EventHandler) handleUnpaid(ctx context.Context, chatID string) {
	records, err := h.approvals.ListUnpaid(ctx)
	if err != nil {
		h.logger.Error("Failed to list unpaid records", zap.Error(err))
		h.notifier.NotifyDeveloper(ctx, fmt.Sprintf("Failed to list unpaid records: %v", err))
		return
	}

	if err := h.notifier.NotifyChat(ctx, chatID, service.RenderUnpaidList(records)); err != nil {
		h.logger.Error("Failed to send unpaid list", zap.Error(err))
	}
}

// extractText decodes the text payload of a Lark message content envelope
func extractText(content string) (string, error) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal message content: %w", err)
	}
	return strings.TrimSpace(payload.Text), nil
}
