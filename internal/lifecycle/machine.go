package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"pulselogic/internal/domain"
)

// ErrInvalidTransition is returned when a phase change is not an allowed edge.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Machine tracks the bootstrap phase and rejects out-of-order transitions.
type Machine struct {
	mu      sync.RWMutex
	current domain.Phase
	history []domain.Phase
	observe func(from, to domain.Phase)
}

// NewMachine creates a machine in the starting phase.
func NewMachine() *Machine {
	return &Machine{
		current: domain.PhaseStarting,
		history: []domain.Phase{domain.PhaseStarting},
	}
}

// OnTransition registers a callback invoked after every applied transition.
func (m *Machine) OnTransition(fn func(from, to domain.Phase)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observe = fn
}

// Transition validates and applies a phase change.
func (m *Machine) Transition(to domain.Phase) error {
	m.mu.Lock()
	from := m.current
	if !isValidTransition(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.current = to
	m.history = append(m.history, to)
	observe := m.observe
	m.mu.Unlock()

	if observe != nil {
		observe(from, to)
	}
	return nil
}

// Current returns the current phase.
func (m *Machine) Current() domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// History returns every phase visited, in order.
func (m *Machine) History() []domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Phase(nil), m.history...)
}

// Done reports whether the machine reached a terminal phase.
func (m *Machine) Done() bool {
	return m.Current().Terminal()
}

// isValidTransition enforces the allowed bootstrap edges.
func isValidTransition(from, to domain.Phase) bool {
	switch from {
	case domain.PhaseStarting:
		return to == domain.PhaseCapabilitiesReady || to == domain.PhaseFailed
	case domain.PhaseCapabilitiesReady:
		return to == domain.PhasePresentationRunning || to == domain.PhaseFailed
	case domain.PhasePresentationRunning:
		return to == domain.PhaseSucceeded || to == domain.PhaseFailed
	default:
		return false
	}
}
