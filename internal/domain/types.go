package domain

import (
	"fmt"
	"time"
)

// Phase tracks the bootstrap sequencer through its lifecycle.
type Phase string

const (
	PhaseStarting            Phase = "starting"
	PhaseCapabilitiesReady   Phase = "capabilities_ready"
	PhasePresentationRunning Phase = "presentation_running"
	PhaseSucceeded           Phase = "succeeded"
	PhaseFailed              Phase = "failed"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// FatalKind classifies the errors that end a bootstrap run.
type FatalKind string

const (
	FatalRuntime        FatalKind = "runtime"
	FatalWindowMissing  FatalKind = "window_missing"
	FatalCapabilityInit FatalKind = "capability_init"
)

// FatalError is the terminal failure of a bootstrap run.
type FatalError struct {
	Kind   FatalKind `json:"kind"`
	Detail string    `json:"detail"`
	Err    error     `json:"-"`
}

// Error formats the failure for the diagnostic log and stderr.
func (e *FatalError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *FatalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Outcome is the terminal state of a bootstrap run.
type Outcome struct {
	Phase        Phase
	Capabilities []Capability
	Err          *FatalError
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	if o.Phase == PhaseSucceeded && o.Err == nil {
		return 0
	}
	return 1
}

// Settings contains user state persisted between runs.
type Settings struct {
	WindowWidth      int       `json:"windowWidth"`
	WindowHeight     int       `json:"windowHeight"`
	LastUpdateCheck  time.Time `json:"lastUpdateCheck,omitempty"`
	DismissedVersion string    `json:"dismissedVersion,omitempty"`
}
