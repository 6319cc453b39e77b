package workflow

// State represents a workflow state in the expense approval lifecycle
type State string

const (
	StateNotProcessed State = "NOT_PROCESSED"
	StatePending      State = "PENDING"
	StateApproved     State = "APPROVED"
	StatePaid         State = "PAID"
	StateRejected     State = "REJECTED"
)

var validStates = map[State]bool{
	StateNotProcessed: true,
	StatePending:      true,
	StateApproved:     true,
	StatePaid:         true,
	StateRejected:     true,
}

var terminalStates = map[State]bool{
	StatePaid:     true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}
