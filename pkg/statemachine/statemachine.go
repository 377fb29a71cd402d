// Package statemachine centralizes the legal status transitions for entities
// whose lifecycle is persisted as a status column. Handlers never write a
// status string directly; they ask the entity's machine for the next state
// and get an error for anything the table does not list.
package statemachine

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned for any (state, event) pair missing from
// the transition table.
var ErrIllegalTransition = errors.New("illegal state transition")

// Event names a lifecycle action applied to an entity.
type Event string

// Machine is an immutable transition table for one entity's status type.
type Machine[S ~string] struct {
	name        string
	transitions map[S]map[Event]S
}

// New builds a machine from a transition table.
func New[S ~string](name string, table map[S]map[Event]S) *Machine[S] {
	return &Machine[S]{name: name, transitions: table}
}

// Next returns the state reached by firing ev from current.
func (m *Machine[S]) Next(current S, ev Event) (S, error) {
	if next, ok := m.transitions[current][ev]; ok {
		return next, nil
	}
	var zero S
	return zero, fmt.Errorf("%w: %s cannot %q from %q", ErrIllegalTransition, m.name, ev, current)
}

// CanFire reports whether ev is legal from current.
func (m *Machine[S]) CanFire(current S, ev Event) bool {
	_, ok := m.transitions[current][ev]
	return ok
}

// IsTerminal reports whether no event can leave the given state.
func (m *Machine[S]) IsTerminal(s S) bool {
	return len(m.transitions[s]) == 0
}
