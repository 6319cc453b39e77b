package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateNotProcessed, false},
		{StatePending, false},
		{StateApproved, false},
		{StatePaid, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"not processed", StateNotProcessed, true},
		{"paid", StatePaid, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	state := StateNotProcessed
	if got := state.String(); got != "NOT_PROCESSED" {
		t.Errorf("State.String() = %v, want %v", got, "NOT_PROCESSED")
	}
}

func TestTrigger_String(t *testing.T) {
	trigger := TriggerHeadApprove
	if got := trigger.String(); got != "HEAD_APPROVE" {
		t.Errorf("Trigger.String() = %v, want %v", got, "HEAD_APPROVE")
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	// Configure valid state
	config := builder.Configure(StateNotProcessed)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	// Configure same state again should return same config
	config2 := builder.Configure(StateNotProcessed)
	if config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		Permit(TriggerHeadReject, StateRejected)

	machine := builder.Build(StateNotProcessed)

	if !machine.CanFire(TriggerHeadReject) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(context.Background(), TriggerHeadReject); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateRejected {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateRejected)
	}
}

func TestStateConfiguration_PermitIf_GuardPasses(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		PermitIf(TriggerHeadApprove, StateApproved, func(ctx context.Context) bool {
			return true
		})

	machine := builder.Build(StateNotProcessed)

	if err := machine.Fire(context.Background(), TriggerHeadApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateApproved)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		PermitIf(TriggerHeadApprove, StateApproved, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StateNotProcessed)

	err := machine.Fire(context.Background(), TriggerHeadApprove)
	if err == nil {
		t.Fatal("Fire() should fail when guard fails")
	}

	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}

	if machine.State() != StateNotProcessed {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateNotProcessed, machine.State())
	}
}

func TestStateConfiguration_PermitIf_MultipleTransitions(t *testing.T) {
	type amountKey struct{}

	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		PermitIf(TriggerHeadApprove, StateApproved, func(ctx context.Context) bool {
			return !ctx.Value(amountKey{}).(bool)
		}).
		PermitIf(TriggerHeadApprove, StatePending, func(ctx context.Context) bool {
			return ctx.Value(amountKey{}).(bool)
		})

	// First transition wins when its guard passes
	machine1 := builder.Build(StateNotProcessed)
	ctx1 := context.WithValue(context.Background(), amountKey{}, false)
	if err := machine1.Fire(ctx1, TriggerHeadApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine1.State() != StateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine1.State(), StateApproved)
	}

	// Second transition fires when the first guard fails
	machine2 := builder.Build(StateNotProcessed)
	ctx2 := context.WithValue(context.Background(), amountKey{}, true)
	if err := machine2.Fire(ctx2, TriggerHeadApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine2.State() != StatePending {
		t.Errorf("State after Fire() = %v, want %v", machine2.State(), StatePending)
	}
}

func TestStateConfiguration_PermitPanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	builder.Configure(StateNotProcessed).Permit(TriggerHeadApprove, State("INVALID"))
}

func TestStateMachine_CanFire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerFinanceApprove, StateApproved).
		Permit(TriggerFinanceReject, StateRejected)

	machine := builder.Build(StatePending)

	tests := []struct {
		trigger  Trigger
		expected bool
	}{
		{TriggerFinanceApprove, true},
		{TriggerFinanceReject, true},
		{TriggerHeadApprove, false},
		{TriggerPay, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			if got := machine.CanFire(tt.trigger); got != tt.expected {
				t.Errorf("CanFire() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		Permit(TriggerPay, StatePaid)

	machine := builder.Build(StateApproved)

	err := machine.Fire(context.Background(), TriggerHeadApprove)
	if err == nil {
		t.Fatal("Fire() should fail for invalid transition")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	if machine.State() != StateApproved {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateApproved, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	builder := NewBuilder()
	// Build without configuring the initial state
	machine := builder.Build(StateNotProcessed)

	err := machine.Fire(context.Background(), TriggerHeadApprove)
	if err == nil {
		t.Fatal("Fire() should fail when no configuration exists")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		Permit(TriggerHeadApprove, StatePending).
		Permit(TriggerHeadReject, StateRejected)

	machine := builder.Build(StateNotProcessed)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 {
		t.Errorf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}

	hasApprove := false
	hasReject := false
	for _, trigger := range triggers {
		if trigger == TriggerHeadApprove {
			hasApprove = true
		}
		if trigger == TriggerHeadReject {
			hasReject = true
		}
	}

	if !hasApprove || !hasReject {
		t.Errorf("PermittedTriggers() = %v, want both TriggerHeadApprove and TriggerHeadReject", triggers)
	}
}

func TestStateMachine_PermittedTriggers_NoConfiguration(t *testing.T) {
	builder := NewBuilder()
	machine := builder.Build(StatePaid)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 0 {
		t.Errorf("PermittedTriggers() returned %d triggers, want 0", len(triggers))
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		Permit(TriggerHeadReject, StateRejected)

	// Build two machines from same builder
	machine1 := builder.Build(StateNotProcessed)
	machine2 := builder.Build(StateNotProcessed)

	if err := machine1.Fire(context.Background(), TriggerHeadReject); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	// machine2 should remain in initial state
	if machine2.State() != StateNotProcessed {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StateNotProcessed)
	}

	if machine1.State() != StateRejected {
		t.Errorf("machine1 state = %v, want %v", machine1.State(), StateRejected)
	}
}

func TestStateMachine_TwoTierApprovalPath(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		Permit(TriggerHeadApprove, StatePending).
		Permit(TriggerHeadReject, StateRejected)

	builder.Configure(StatePending).
		Permit(TriggerFinanceApprove, StateApproved).
		Permit(TriggerFinanceReject, StateRejected)

	builder.Configure(StateApproved).
		Permit(TriggerPay, StatePaid)

	machine := builder.Build(StateNotProcessed)

	steps := []struct {
		trigger       Trigger
		expectedState State
	}{
		{TriggerHeadApprove, StatePending},
		{TriggerFinanceApprove, StateApproved},
		{TriggerPay, StatePaid},
	}

	for i, step := range steps {
		if err := machine.Fire(context.Background(), step.trigger); err != nil {
			t.Errorf("Step %d: Fire(%v) failed: %v", i, step.trigger, err)
		}

		if machine.State() != step.expectedState {
			t.Errorf("Step %d: State after Fire(%v) = %v, want %v", i, step.trigger, machine.State(), step.expectedState)
		}
	}

	// Verify terminal state
	if !machine.State().IsTerminal() {
		t.Error("Final state should be terminal")
	}

	triggers := machine.PermittedTriggers()
	if len(triggers) != 0 {
		t.Errorf("Terminal state should have 0 permitted triggers, got %d", len(triggers))
	}
}

func TestStateMachine_RejectionPath(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNotProcessed).
		Permit(TriggerHeadApprove, StatePending).
		Permit(TriggerHeadReject, StateRejected)

	builder.Configure(StatePending).
		Permit(TriggerFinanceReject, StateRejected)

	machine := builder.Build(StateNotProcessed)

	if err := machine.Fire(context.Background(), TriggerHeadApprove); err != nil {
		t.Errorf("Fire(TriggerHeadApprove) failed: %v", err)
	}

	if err := machine.Fire(context.Background(), TriggerFinanceReject); err != nil {
		t.Errorf("Fire(TriggerFinanceReject) failed: %v", err)
	}

	if machine.State() != StateRejected {
		t.Errorf("State = %v, want %v", machine.State(), StateRejected)
	}

	if !machine.State().IsTerminal() {
		t.Error("Rejected state should be terminal")
	}
}
