package entity

import (
	"strings"
	"time"
)

// Status represents the lifecycle status of an expense record
type Status string

const (
	StatusNotProcessed Status = "Not processed"
	StatusPending      Status = "Pending"
	StatusApproved     Status = "Approved"
	StatusPaid         Status = "Paid"
	StatusRejected     Status = "Rejected"
)

var validStatuses = map[Status]bool{
	StatusNotProcessed: true,
	StatusPending:      true,
	StatusApproved:     true,
	StatusPaid:         true,
	StatusRejected:     true,
}

var terminalStatuses = map[Status]bool{
	StatusPaid:     true,
	StatusRejected: true,
}

// IsTerminal returns true if no further transitions are permitted from the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is one of the defined lifecycle statuses
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ExpenseRecord is a payment request moving through the approval workflow.
// ApprovalsReceived is a tier marker set to exact values by transitions, not a
// running vote tally. ApprovedBy is a comma-joined, append-only approver list.
type ExpenseRecord struct {
	ID                int64     `json:"id"`
	Amount            float64   `json:"amount"`
	ExpenseItem       string    `json:"expense_item"`
	ExpenseGroup      string    `json:"expense_group"`
	Partner           string    `json:"partner"`
	Comment           string    `json:"comment"`
	Period            string    `json:"period"`
	PaymentMethod     string    `json:"payment_method"`
	ApprovalsNeeded   int       `json:"approvals_needed"`
	ApprovalsReceived int       `json:"approvals_received"`
	Status            Status    `json:"status"`
	ApprovedBy        string    `json:"approved_by"`
	SubmitterChatID   string    `json:"submitter_chat_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AppendApprover returns ApprovedBy with the given identity appended.
// The existing list is never overwritten; a finance rejection appends the
// rejecting identity as a second token after the head approver.
func (r *ExpenseRecord) AppendApprover(identity string) string {
	if r.ApprovedBy == "" {
		return identity
	}
	return r.ApprovedBy + ", " + identity
}

// Approvers returns the ordered approver identities recorded so far
func (r *ExpenseRecord) Approvers() []string {
	if r.ApprovedBy == "" {
		return nil
	}
	return strings.Split(r.ApprovedBy, ", ")
}
