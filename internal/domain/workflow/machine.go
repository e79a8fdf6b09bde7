package workflow

import (
	"fmt"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// GuardFunc evaluates whether a candidate transition should be taken
type GuardFunc func() bool

// transition is a target status with an optional guard
type transition struct {
	toStatus entity.Status
	guard    GuardFunc
}

// Builder configures permitted transitions per status and builds
// machine instances. Transitions for the same action are tried in
// configuration order; the first whose guard passes wins.
type Builder struct {
	configurations map[entity.Status]map[Action][]transition
}

// NewBuilder creates a new status machine builder
func NewBuilder() *Builder {
	return &Builder{
		configurations: make(map[entity.Status]map[Action][]transition),
	}
}

// StatusConfig configures transitions out of a specific status
type StatusConfig struct {
	builder    *Builder
	fromStatus entity.Status
}

// Configure returns a configuration handle for the given status
func (b *Builder) Configure(status entity.Status) *StatusConfig {
	if !status.IsValid() {
		panic(fmt.Sprintf("invalid status: %s", status))
	}
	if _, ok := b.configurations[status]; !ok {
		b.configurations[status] = make(map[Action][]transition)
	}
	return &StatusConfig{builder: b, fromStatus: status}
}

// Permit allows an action to transition to the target status
func (c *StatusConfig) Permit(action Action, toStatus entity.Status) *StatusConfig {
	return c.PermitIf(action, toStatus, nil)
}

// PermitIf allows an action to transition to the target status when the
// guard passes
func (c *StatusConfig) PermitIf(action Action, toStatus entity.Status, guard GuardFunc) *StatusConfig {
	if !toStatus.IsValid() {
		panic(fmt.Sprintf("invalid target status: %s", toStatus))
	}
	transitions := c.builder.configurations[c.fromStatus]
	transitions[action] = append(transitions[action], transition{toStatus: toStatus, guard: guard})
	return c
}

// Build creates a machine instance positioned at the given status
func (b *Builder) Build(current entity.Status) (*Machine, error) {
	if !current.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, current)
	}
	return &Machine{current: current, configurations: b.configurations}, nil
}

// Machine tracks a report's current status and validates transitions
type Machine struct {
	current        entity.Status
	configurations map[entity.Status]map[Action][]transition
}

// Status returns the current status
func (m *Machine) Status() entity.Status {
	return m.current
}

// CanFire returns true if at least one transition is configured for the
// action in the current status. Guards are not evaluated here.
func (m *Machine) CanFire(action Action) bool {
	transitions, ok := m.configurations[m.current]
	if !ok {
		return false
	}
	return len(transitions[action]) > 0
}

// Fire executes the action, moving to the first target status whose
// guard passes
func (m *Machine) Fire(action Action) error {
	transitions, ok := m.configurations[m.current]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, action, m.current)
	}
	candidates := transitions[action]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, action, m.current)
	}
	for _, t := range candidates {
		if t.guard == nil || t.guard() {
			m.current = t.toStatus
			return nil
		}
	}
	return fmt.Errorf("%w: action %s from %s", ErrGuardFailed, action, m.current)
}

// PermittedActions returns the actions with at least one configured
// transition out of the current status
func (m *Machine) PermittedActions() []Action {
	transitions, ok := m.configurations[m.current]
	if !ok {
		return []Action{}
	}
	actions := make([]Action, 0, len(transitions))
	for action := range transitions {
		actions = append(actions, action)
	}
	return actions
}

// NewApprovalMachine builds the claim-report approval machine positioned
// at the given status. The fullySigned guard reports whether every
// designated approver has signed; an APPROVE that completes the set
// lands in APPROVED, otherwise the report stays PENDING. APPROVED is
// terminal. REJECTED only permits resubmission.
func NewApprovalMachine(current entity.Status, fullySigned GuardFunc) (*Machine, error) {
	b := NewBuilder()
	b.Configure(entity.StatusPending).
		PermitIf(ActionApprove, entity.StatusApproved, fullySigned).
		Permit(ActionApprove, entity.StatusPending).
		Permit(ActionReject, entity.StatusRejected)
	b.Configure(entity.StatusRejected).
		Permit(ActionResubmit, entity.StatusPending)
	return b.Build(current)
}
