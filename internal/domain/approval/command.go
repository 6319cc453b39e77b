package approval

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is the decision carried by an inbound approval event
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// IsValid returns true if the action is approve or reject
func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// CommandKind discriminates the command objects dispatched into the engine
type CommandKind string

const (
	KindDecision CommandKind = "decision"
	KindPayment  CommandKind = "payment"
)

// Command is an inbound action decoded once at the transport boundary. The
// token it came from is untrusted input; the engine re-checks every
// precondition against the persisted record.
type Command struct {
	Kind            CommandKind
	Tier            Tier
	Action          Action
	RecordID        int64
	SubmitterChatID string

	// Actor is the identity of the user who pressed the button
	Actor string

	// OriginMessageID references the chat message carrying the pressed button,
	// edited after the transition to strip the stale affordances
	OriginMessageID string
}

const (
	decisionTokenPrefix = "approval"
	paymentTokenPrefix  = "pay"
)

// DecisionToken encodes the accept/reject affordance for a tier and record
func DecisionToken(tier Tier, action Action, recordID int64, submitterChatID string) string {
	return fmt.Sprintf("%s_%s_%s_%d_%s", decisionTokenPrefix, tier, action, recordID, submitterChatID)
}

// PaymentToken encodes the payment-confirmation affordance for a record
func PaymentToken(recordID int64) string {
	return fmt.Sprintf("%s_%d", paymentTokenPrefix, recordID)
}

// ParseToken decodes an action token into a Command. Actor and OriginMessageID
// are filled in by the caller from the surrounding transport event.
func ParseToken(token string) (*Command, error) {
	switch {
	case strings.HasPrefix(token, decisionTokenPrefix+"_"):
		return parseDecisionToken(token)
	case strings.HasPrefix(token, paymentTokenPrefix+"_"):
		return parsePaymentToken(token)
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadActionToken, token)
	}
}

func parseDecisionToken(token string) (*Command, error) {
	// Chat ids may themselves contain underscores, so the submitter id is
	// everything after the fourth separator.
	parts := strings.SplitN(token, "_", 5)
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: %q", ErrBadActionToken, token)
	}

	tier := Tier(parts[1])
	if tier != TierHead && tier != TierFinance {
		return nil, fmt.Errorf("%w: unknown tier %q", ErrBadActionToken, parts[1])
	}

	action := Action(parts[2])
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadActionToken, parts[2])
	}

	recordID, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad record id %q", ErrBadActionToken, parts[3])
	}

	return &Command{
		Kind:            KindDecision,
		Tier:            tier,
		Action:          action,
		RecordID:        recordID,
		SubmitterChatID: parts[4],
	}, nil
}

func parsePaymentToken(token string) (*Command, error) {
	parts := strings.SplitN(token, "_", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrBadActionToken, token)
	}

	recordID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad record id %q", ErrBadActionToken, parts[1])
	}

	return &Command{
		Kind:     KindPayment,
		RecordID: recordID,
	}, nil
}
