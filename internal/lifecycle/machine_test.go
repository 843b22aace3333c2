package lifecycle

import (
	"errors"
	"testing"

	"pulselogic/internal/domain"
)

// TestMachineLifecycle verifies normal progression to succeeded.
func TestMachineLifecycle(t *testing.T) {
	m := NewMachine()
	if m.Current() != domain.PhaseStarting {
		t.Fatalf("initial phase = %s, want starting", m.Current())
	}

	for _, phase := range []domain.Phase{
		domain.PhaseCapabilitiesReady,
		domain.PhasePresentationRunning,
		domain.PhaseSucceeded,
	} {
		if err := m.Transition(phase); err != nil {
			t.Fatalf("transition to %s: %v", phase, err)
		}
	}

	if !m.Done() {
		t.Fatal("expected terminal phase")
	}
	if got := len(m.History()); got != 4 {
		t.Fatalf("history length = %d, want 4", got)
	}
}

// TestMachineRejectsSkippedPhase checks presentation cannot start before capabilities.
func TestMachineRejectsSkippedPhase(t *testing.T) {
	m := NewMachine()
	err := m.Transition(domain.PhasePresentationRunning)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.Current() != domain.PhaseStarting {
		t.Fatalf("phase = %s, want starting", m.Current())
	}
}

// TestMachineTerminalPhasesAreFinal checks no edges leave succeeded or failed.
func TestMachineTerminalPhasesAreFinal(t *testing.T) {
	m := NewMachine()
	if err := m.Transition(domain.PhaseFailed); err != nil {
		t.Fatalf("fail from starting: %v", err)
	}
	if err := m.Transition(domain.PhaseCapabilitiesReady); err == nil {
		t.Fatal("expected error leaving failed")
	}
	if err := m.Transition(domain.PhaseFailed); err == nil {
		t.Fatal("expected error on repeated failed")
	}
}

// TestMachineNotifiesObserver checks transition callbacks fire in order.
func TestMachineNotifiesObserver(t *testing.T) {
	m := NewMachine()
	var seen []string
	m.OnTransition(func(from, to domain.Phase) {
		seen = append(seen, string(from)+">"+string(to))
	})

	_ = m.Transition(domain.PhaseCapabilitiesReady)
	_ = m.Transition(domain.PhaseSucceeded)

	if len(seen) != 1 || seen[0] != "starting>capabilities_ready" {
		t.Fatalf("observer calls = %v", seen)
	}
}
