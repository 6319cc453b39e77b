package approval

import (
	"reflect"
	"testing"
)

func TestRequiredApprovals(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected int
	}{
		{"small amount", 100, 1},
		{"just below threshold", 49999.99, 1},
		{"exactly at threshold", 50000, 2},
		{"above threshold", 50000.01, 2},
		{"large amount", 1000000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredApprovals(tt.amount); got != tt.expected {
				t.Errorf("RequiredApprovals(%v) = %d, want %d", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestTier_IsValid(t *testing.T) {
	tests := []struct {
		tier     Tier
		expected bool
	}{
		{TierHead, true},
		{TierFinance, true},
		{TierPayers, true},
		{TierAll, true},
		{Tier("manager"), false},
		{Tier(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := tt.tier.IsValid(); got != tt.expected {
				t.Errorf("Tier.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGroups_Recipients(t *testing.T) {
	groups := Groups{
		Head:    []string{"oc_head"},
		Finance: []string{"oc_finance_1", "oc_finance_2"},
		Payers:  []string{"oc_payer"},
	}

	tests := []struct {
		tier     Tier
		expected []string
	}{
		{TierHead, []string{"oc_head"}},
		{TierFinance, []string{"oc_finance_1", "oc_finance_2"}},
		{TierPayers, []string{"oc_payer"}},
		{TierAll, []string{"oc_head", "oc_finance_1", "oc_finance_2", "oc_payer"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := groups.Recipients(tt.tier); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Recipients(%v) = %v, want %v", tt.tier, got, tt.expected)
			}
		})
	}
}

func TestGroups_Recipients_AllDeduplicates(t *testing.T) {
	// The same chat may sit in more than one tier; TierAll must not message it twice
	groups := Groups{
		Head:    []string{"oc_shared"},
		Finance: []string{"oc_shared", "oc_finance"},
		Payers:  []string{"oc_shared"},
	}

	got := groups.Recipients(TierAll)
	expected := []string{"oc_shared", "oc_finance"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Recipients(TierAll) = %v, want %v", got, expected)
	}
}

func TestGroups_Recipients_PanicsOnUnknownTier(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Recipients() should panic on unknown tier")
		}
	}()

	Groups{}.Recipients(Tier("manager"))
}
