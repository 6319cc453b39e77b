package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerHeadApprove    Trigger = "HEAD_APPROVE"
	TriggerHeadReject     Trigger = "HEAD_REJECT"
	TriggerFinanceApprove Trigger = "FINANCE_APPROVE"
	TriggerFinanceReject  Trigger = "FINANCE_REJECT"
	TriggerPay            Trigger = "PAY"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
