package lark

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/antonkh/budget-approval/internal/application/port"
	"go.uber.org/zap"
)

// Messenger implements port.Messenger over Lark interactive card messages.
// Buttons carry the action token in the card value; the card action callback
// delivers it back through the webhook.
type Messenger struct {
	messageAPI *MessageAPI
	logger     *zap.Logger
}

// NewMessenger creates a new Lark messenger adapter
func NewMessenger(client *Client, logger *zap.Logger) *Messenger {
	return &Messenger{
		messageAPI: NewMessageAPI(client, logger),
		logger:     logger,
	}
}

// Send delivers an interactive card with optional action buttons to one chat
func (m *Messenger) Send(ctx context.Context, chatID, text string, buttons []port.Button) (string, error) {
	if chatID == "" {
		return "", fmt.Errorf("chatID cannot be empty")
	}
	if text == "" {
		return "", fmt.Errorf("text cannot be empty")
	}

	card, err := buildCard(text, buttons)
	if err != nil {
		return "", err
	}

	messageID, err := m.messageAPI.SendMessage(ctx, "chat_id", chatID, "interactive", card)
	if err != nil {
		return "", fmt.Errorf("failed to send card message: %w", err)
	}

	return messageID, nil
}

// Edit replaces the message content with plain text and no buttons
func (m *Messenger) Edit(ctx context.Context, messageID, text string) error {
	if messageID == "" {
		return fmt.Errorf("messageID cannot be empty")
	}

	card, err := buildCard(text, nil)
	if err != nil {
		return err
	}

	if err := m.messageAPI.PatchMessage(ctx, messageID, card); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// buildCard serializes a Lark interactive card with the given text and buttons
func buildCard(text string, buttons []port.Button) (string, error) {
	elements := []map[string]interface{}{
		{
			"tag": "div",
			"text": map[string]interface{}{
				"tag":     "lark_md",
				"content": text,
			},
		},
	}

	if len(buttons) > 0 {
		actions := make([]map[string]interface{}, 0, len(buttons))
		for _, b := range buttons {
			actions = append(actions, map[string]interface{}{
				"tag": "button",
				"text": map[string]interface{}{
					"tag":     "plain_text",
					"content": b.Label,
				},
				"type": "primary",
				"value": map[string]interface{}{
					"token": b.Token,
				},
			})
		}
		elements = append(elements, map[string]interface{}{
			"tag":     "action",
			"actions": actions,
		})
	}

	card := map[string]interface{}{
		"config": map[string]interface{}{
			"wide_screen_mode": true,
		},
		"elements": elements,
	}

	data, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card content: %w", err)
	}

	return string(data), nil
}

// Verify interface compliance
var _ port.Messenger = (*Messenger)(nil)
