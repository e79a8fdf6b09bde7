package workflow

import (
	"errors"
	"testing"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

func TestAction_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		expected bool
	}{
		{"approve", ActionApprove, true},
		{"reject", ActionReject, true},
		{"resubmit", ActionResubmit, true},
		{"unknown", Action("SIGN"), false},
		{"empty", Action(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.IsValid(); got != tt.expected {
				t.Errorf("Action.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidStatus(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid status")
		}
	}()
	NewBuilder().Configure(entity.Status("BOGUS"))
}

func TestBuilder_BuildRejectsInvalidStatus(t *testing.T) {
	_, err := NewBuilder().Build(entity.Status("BOGUS"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Build() error = %v, want ErrInvalidStatus", err)
	}
}

func TestMachine_Fire(t *testing.T) {
	b := NewBuilder()
	b.Configure(entity.StatusPending).
		Permit(ActionReject, entity.StatusRejected)

	m, err := b.Build(entity.StatusPending)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !m.CanFire(ActionReject) {
		t.Error("CanFire() should be true for a permitted action")
	}
	if m.CanFire(ActionApprove) {
		t.Error("CanFire() should be false for an unconfigured action")
	}

	if err := m.Fire(ActionReject); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if m.Status() != entity.StatusRejected {
		t.Errorf("Status() = %v, want %v", m.Status(), entity.StatusRejected)
	}

	// Rejected has no configured transitions in this machine
	if err := m.Fire(ActionReject); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestMachine_GuardOrder(t *testing.T) {
	b := NewBuilder()
	b.Configure(entity.StatusPending).
		PermitIf(ActionApprove, entity.StatusApproved, func() bool { return false }).
		Permit(ActionApprove, entity.StatusPending)

	m, err := b.Build(entity.StatusPending)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := m.Fire(ActionApprove); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if m.Status() != entity.StatusPending {
		t.Errorf("guarded transition taken, Status() = %v", m.Status())
	}
}

func TestMachine_AllGuardsFailed(t *testing.T) {
	b := NewBuilder()
	b.Configure(entity.StatusPending).
		PermitIf(ActionApprove, entity.StatusApproved, func() bool { return false })

	m, _ := b.Build(entity.StatusPending)
	if err := m.Fire(ActionApprove); !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
}

func TestNewApprovalMachine_Transitions(t *testing.T) {
	tests := []struct {
		name        string
		current     entity.Status
		fullySigned bool
		action      Action
		wantStatus  entity.Status
		wantErr     error
	}{
		{"partial approve stays pending", entity.StatusPending, false, ActionApprove, entity.StatusPending, nil},
		{"final approve lands approved", entity.StatusPending, true, ActionApprove, entity.StatusApproved, nil},
		{"reject from pending", entity.StatusPending, false, ActionReject, entity.StatusRejected, nil},
		{"resubmit from rejected", entity.StatusRejected, false, ActionResubmit, entity.StatusPending, nil},
		{"approved is terminal", entity.StatusApproved, true, ActionApprove, entity.StatusApproved, ErrInvalidTransition},
		{"no approve from rejected", entity.StatusRejected, true, ActionApprove, entity.StatusRejected, ErrInvalidTransition},
		{"no reject from rejected", entity.StatusRejected, false, ActionReject, entity.StatusRejected, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed := tt.fullySigned
			m, err := NewApprovalMachine(tt.current, func() bool { return signed })
			if err != nil {
				t.Fatalf("NewApprovalMachine() error = %v", err)
			}

			err = m.Fire(tt.action)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire() error = %v", err)
			}
			if m.Status() != tt.wantStatus {
				t.Errorf("Status() = %v, want %v", m.Status(), tt.wantStatus)
			}
		})
	}
}
