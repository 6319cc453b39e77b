package approval

import "fmt"

// TwoApprovalsThreshold is the amount at and above which a request needs a
// second approval from the finance tier. Fixed by policy, not configurable.
const TwoApprovalsThreshold = 50000

// Tier identifies an approval stage or notification group
type Tier string

const (
	TierHead    Tier = "head"
	TierFinance Tier = "finance"
	TierPayers  Tier = "payers"
	TierAll     Tier = "all"
)

var validTiers = map[Tier]bool{
	TierHead:    true,
	TierFinance: true,
	TierPayers:  true,
	TierAll:     true,
}

// IsValid returns true if the tier is one of the defined tiers
func (t Tier) IsValid() bool {
	return validTiers[t]
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// RequiredApprovals resolves how many affirmative approvals a request of the
// given amount needs. Called once at submission; never recomputed.
func RequiredApprovals(amount float64) int {
	if amount >= TwoApprovalsThreshold {
		return 2
	}
	return 1
}

// Groups holds the fixed recipient-group membership per tier, read from
// configuration at process start and immutable afterwards.
type Groups struct {
	Head    []string
	Finance []string
	Payers  []string
}

// Recipients returns the chat ids that a message for the given tier goes to.
// An unknown tier is a programmer error and panics.
func (g Groups) Recipients(tier Tier) []string {
	switch tier {
	case TierHead:
		return g.Head
	case TierFinance:
		return g.Finance
	case TierPayers:
		return g.Payers
	case TierAll:
		union := make([]string, 0, len(g.Head)+len(g.Finance)+len(g.Payers))
		seen := make(map[string]bool)
		for _, ids := range [][]string{g.Head, g.Finance, g.Payers} {
			for _, id := range ids {
				if !seen[id] {
					seen[id] = true
					union = append(union, id)
				}
			}
		}
		return union
	default:
		panic(fmt.Sprintf("unknown recipient tier: %s", tier))
	}
}
