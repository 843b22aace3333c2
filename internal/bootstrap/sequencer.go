package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"pulselogic/internal/bridge"
	"pulselogic/internal/buildinfo"
	"pulselogic/internal/capability"
	"pulselogic/internal/diagnostics"
	"pulselogic/internal/domain"
	"pulselogic/internal/lifecycle"
	"pulselogic/internal/logging"
	"pulselogic/internal/presentation"
)

// ExitMessage is recorded once when the presentation loop returns cleanly.
const ExitMessage = buildinfo.AppName + " exited normally"

var errNoRuntime = errors.New("no presentation runtime configured")

// StartupConfig carries the build-time switches the sequencer honors.
type StartupConfig struct {
	Version string
	Profile string
	// DevTools opens the web inspector on the primary window. It is taken
	// from the build profile only.
	DevTools      bool
	PrimaryWindow string
}

// DefaultStartupConfig derives the startup switches from build info.
func DefaultStartupConfig() StartupConfig {
	return StartupConfig{
		Version:       buildinfo.Version,
		Profile:       buildinfo.Profile(),
		DevTools:      buildinfo.DevTools,
		PrimaryWindow: presentation.PrimaryWindowID,
	}
}

// Sequencer drives one process run from banner to exit outcome.
type Sequencer struct {
	Config   StartupConfig
	Sink     diagnostics.Sink
	Registry *capability.Registry
	Bridge   *bridge.Commands
	Runtime  presentation.Runtime
	Stderr   io.Writer
	Logger   *logging.Logger

	machine *lifecycle.Machine
}

// Run executes the bootstrap steps synchronously and returns the terminal
// outcome. It blocks for as long as the presentation runtime runs.
func (s *Sequencer) Run() domain.Outcome {
	s.defaults()
	s.machine = lifecycle.NewMachine()
	s.machine.OnTransition(func(from, to domain.Phase) {
		s.Logger.Debug("lifecycle transition", zap.String("from", string(from)), zap.String("to", string(to)))
	})

	s.Sink.Record(fmt.Sprintf("%s v%s starting (%s)", buildinfo.AppName, s.Config.Version, s.Config.Profile))

	handles, err := s.Registry.InitializeAll()
	caps := capability.Capabilities(handles)
	if err != nil {
		return s.fail(caps, domain.FatalCapabilityInit, err)
	}
	for _, c := range caps {
		s.Logger.Info("capability ready", zap.String("kind", string(c.Kind)), zap.String("name", c.Name))
	}
	s.advance(domain.PhaseCapabilitiesReady)

	if s.Runtime == nil {
		return s.fail(caps, domain.FatalRuntime, errNoRuntime)
	}
	s.Runtime.Bind(s.Bridge)
	for _, module := range capability.Modules(handles) {
		s.Runtime.Bind(module)
	}

	if s.Config.DevTools {
		window, ok := s.Runtime.Window(s.Config.PrimaryWindow)
		if !ok {
			return s.fail(caps, domain.FatalWindowMissing, fmt.Errorf("window %q not found", s.Config.PrimaryWindow))
		}
		if err := window.OpenInspector(); err != nil {
			s.Logger.Warn("open inspector", zap.String("window", window.ID()), zap.Error(err))
		}
	}

	s.advance(domain.PhasePresentationRunning)
	if err := s.Runtime.Run(); err != nil {
		return s.fail(caps, domain.FatalRuntime, err)
	}

	s.advance(domain.PhaseSucceeded)
	s.Sink.Record(ExitMessage)
	return domain.Outcome{Phase: domain.PhaseSucceeded, Capabilities: caps}
}

// History returns the phases visited by the last Run.
func (s *Sequencer) History() []domain.Phase {
	if s.machine == nil {
		return nil
	}
	return s.machine.History()
}

func (s *Sequencer) defaults() {
	if s.Sink == nil {
		s.Sink = diagnostics.NewFileSink()
	}
	if s.Registry == nil {
		s.Registry = capability.NewRegistry()
	}
	if s.Bridge == nil {
		s.Bridge = bridge.NewCommands()
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.Config.Version == "" {
		s.Config.Version = buildinfo.Version
	}
	if s.Config.Profile == "" {
		s.Config.Profile = buildinfo.Profile()
	}
	if s.Config.PrimaryWindow == "" {
		s.Config.PrimaryWindow = presentation.PrimaryWindowID
	}
}

func (s *Sequencer) advance(to domain.Phase) {
	if err := s.machine.Transition(to); err != nil {
		s.Logger.Error("lifecycle", zap.Error(err))
	}
}

// fail moves to the failed phase and reports the error on both channels.
func (s *Sequencer) fail(caps []domain.Capability, kind domain.FatalKind, err error) domain.Outcome {
	fatal := &domain.FatalError{Kind: kind, Detail: err.Error(), Err: err}
	s.advance(domain.PhaseFailed)
	s.Logger.Error("bootstrap failed", zap.String("kind", string(kind)), zap.Error(err))
	diagnostics.ReportFatal(s.Sink, s.Stderr, "fatal: "+fatal.Detail)
	return domain.Outcome{Phase: domain.PhaseFailed, Capabilities: caps, Err: fatal}
}
