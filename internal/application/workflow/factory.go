package workflow

import (
	"context"

	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/antonkh/budget-approval/internal/domain/entity"
	domainwf "github.com/antonkh/budget-approval/internal/domain/workflow"
)

// stateFor maps a persisted record status onto its workflow state
func stateFor(status entity.Status) domainwf.State {
	switch status {
	case entity.StatusNotProcessed:
		return domainwf.StateNotProcessed
	case entity.StatusPending:
		return domainwf.StatePending
	case entity.StatusApproved:
		return domainwf.StateApproved
	case entity.StatusPaid:
		return domainwf.StatePaid
	case entity.StatusRejected:
		return domainwf.StateRejected
	default:
		panic("unknown record status: " + status.String())
	}
}

// StatusFor maps a workflow state back onto the persisted record status
func StatusFor(state domainwf.State) entity.Status {
	switch state {
	case domainwf.StateNotProcessed:
		return entity.StatusNotProcessed
	case domainwf.StatePending:
		return entity.StatusPending
	case domainwf.StateApproved:
		return entity.StatusApproved
	case domainwf.StatePaid:
		return entity.StatusPaid
	case domainwf.StateRejected:
		return entity.StatusRejected
	default:
		panic("unknown workflow state: " + state.String())
	}
}

// BuildExpenseStateMachine creates a state machine configured for the two-tier
// expense approval workflow, positioned at the record's current status. A head
// approval routes to the finance tier when the amount reaches the two-approval
// threshold and straight to payment otherwise.
func BuildExpenseStateMachine(rec *entity.ExpenseRecord) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	needsFinance := func(ctx context.Context) bool {
		return rec.Amount >= approval.TwoApprovalsThreshold
	}
	headOnly := func(ctx context.Context) bool {
		return rec.Amount < approval.TwoApprovalsThreshold
	}

	builder.Configure(domainwf.StateNotProcessed).
		PermitIf(domainwf.TriggerHeadApprove, domainwf.StateApproved, headOnly).
		PermitIf(domainwf.TriggerHeadApprove, domainwf.StatePending, needsFinance).
		Permit(domainwf.TriggerHeadReject, domainwf.StateRejected)

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerFinanceApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerFinanceReject, domainwf.StateRejected)

	builder.Configure(domainwf.StateApproved).
		Permit(domainwf.TriggerPay, domainwf.StatePaid)

	// PAID and REJECTED are terminal states - no outgoing transitions

	return builder.Build(stateFor(rec.Status))
}

// TriggerFor maps an inbound decision onto its workflow trigger
func TriggerFor(tier approval.Tier, action approval.Action) domainwf.Trigger {
	switch {
	case tier == approval.TierHead && action == approval.ActionApprove:
		return domainwf.TriggerHeadApprove
	case tier == approval.TierHead && action == approval.ActionReject:
		return domainwf.TriggerHeadReject
	case tier == approval.TierFinance && action == approval.ActionApprove:
		return domainwf.TriggerFinanceApprove
	case tier == approval.TierFinance && action == approval.ActionReject:
		return domainwf.TriggerFinanceReject
	default:
		panic("no trigger for tier " + tier.String() + " action " + string(action))
	}
}
