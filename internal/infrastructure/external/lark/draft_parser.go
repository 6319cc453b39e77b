package lark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antonkh/budget-approval/internal/domain/approval"
	"go.uber.org/zap"
)

// DraftParser turns the free-text submission command into a validated expense
// draft. The grammar is seven semicolon-separated fields:
// amount; item; group; partner; comment; period; payment method
// where period holds one or more mm.yy tokens separated by spaces.
type DraftParser struct {
	logger *zap.Logger
}

// NewDraftParser creates a new draft parser
func NewDraftParser(logger *zap.Logger) *DraftParser {
	return &DraftParser{logger: logger}
}

var draftPattern = regexp.MustCompile(
	`^((?:0|[1-9]\d*)(?:\.\d+)?)\s*;\s*([^;]+)\s*;\s*([^;]+)\s*;\s*([^;]+)\s*;\s*([^;]+)\s*;` +
		`\s*((?:\d{2}\.\d{2}\s*)+)\s*;\s*([^;]+)$`)

// Usage describes the expected submission format, replied on malformed input
const Usage = "Wrong submission format. Please send:\n" +
	"amount; expense item; expense group; partner; comment; period; payment method\n" +
	"1) amount: a positive number\n" +
	"2) expense item, group, partner, comment, payment method: free text\n" +
	"3) period: one or more dates in mm.yy form separated by spaces (e.g. \"08.22 10.22\")"

// Parse decodes the submission text into a draft
func (p *DraftParser) Parse(text string) (approval.Draft, error) {
	match := draftPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		p.logger.Info("Submission text does not match the grammar")
		return approval.Draft{}, fmt.Errorf("%w: text does not match the submission grammar", approval.ErrInvalidDraft)
	}

	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return approval.Draft{}, fmt.Errorf("%w: bad amount %q", approval.ErrInvalidDraft, match[1])
	}

	period := strings.Join(strings.Fields(match[6]), " ")
	for _, token := range strings.Fields(period) {
		if _, err := time.Parse("01.06", token); err != nil {
			return approval.Draft{}, fmt.Errorf("%w: bad period token %q, want mm.yy", approval.ErrInvalidDraft, token)
		}
	}

	draft := approval.Draft{
		Amount:        amount,
		ExpenseItem:   strings.TrimSpace(match[2]),
		ExpenseGroup:  strings.TrimSpace(match[3]),
		Partner:       strings.TrimSpace(match[4]),
		Comment:       strings.TrimSpace(match[5]),
		Period:        period,
		PaymentMethod: strings.TrimSpace(match[7]),
	}

	if err := draft.Validate(); err != nil {
		return approval.Draft{}, err
	}

	return draft, nil
}
