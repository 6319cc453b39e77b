package approval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Draft is a structured, validated submission produced at the chat boundary.
// The submission handler trusts its invariants; Validate is the contract.
type Draft struct {
	Amount        float64
	ExpenseItem   string
	ExpenseGroup  string
	Partner       string
	Comment       string
	Period        string
	PaymentMethod string
}

// ErrInvalidDraft is returned when a draft violates the submission contract
var ErrInvalidDraft = errors.New("invalid expense draft")

// Validate checks the submission contract: positive amount, non-empty text
// fields, and a period of one or more mm.yy tokens separated by spaces.
func (d Draft) Validate() error {
	if d.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDraft)
	}

	fields := map[string]string{
		"expense item":   d.ExpenseItem,
		"expense group":  d.ExpenseGroup,
		"partner":        d.Partner,
		"comment":        d.Comment,
		"payment method": d.PaymentMethod,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidDraft, name)
		}
	}

	tokens := strings.Fields(d.Period)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: period must contain at least one month-year token", ErrInvalidDraft)
	}
	for _, token := range tokens {
		if _, err := time.Parse("01.06", token); err != nil {
			return fmt.Errorf("%w: bad period token %q, want mm.yy", ErrInvalidDraft, token)
		}
	}

	return nil
}
