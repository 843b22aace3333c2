package bootstrap

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulselogic/internal/bridge"
	"pulselogic/internal/capability"
	"pulselogic/internal/diagnostics"
	"pulselogic/internal/domain"
	"pulselogic/internal/presentation"
)

// fakeWindow counts inspector requests.
type fakeWindow struct {
	id        string
	inspected int
	err       error
}

func (w *fakeWindow) ID() string { return w.id }

func (w *fakeWindow) OpenInspector() error {
	w.inspected++
	return w.err
}

// fakeRuntime records bound services and returns a scripted Run result.
type fakeRuntime struct {
	windows map[string]*fakeWindow
	bound   []any
	runErr  error
	runs    int
	onRun   func()
}

func newFakeRuntime(windowIDs ...string) *fakeRuntime {
	rt := &fakeRuntime{windows: map[string]*fakeWindow{}}
	for _, id := range windowIDs {
		rt.windows[id] = &fakeWindow{id: id}
	}
	return rt
}

func (r *fakeRuntime) Bind(services ...any) {
	r.bound = append(r.bound, services...)
}

func (r *fakeRuntime) Window(id string) (presentation.Window, bool) {
	w, ok := r.windows[id]
	if !ok {
		return nil, false
	}
	return w, true
}

func (r *fakeRuntime) Run() error {
	r.runs++
	if r.onRun != nil {
		r.onRun()
	}
	return r.runErr
}

type stubModule struct {
	kind domain.CapabilityKind
}

func (m stubModule) Kind() domain.CapabilityKind { return m.kind }

func stubEntries(kinds ...domain.CapabilityKind) []capability.Entry {
	entries := make([]capability.Entry, 0, len(kinds))
	for _, kind := range kinds {
		kind := kind
		entries = append(entries, capability.Entry{
			Kind: kind,
			Name: string(kind),
			Init: func() (capability.Module, error) { return stubModule{kind: kind}, nil },
		})
	}
	return entries
}

func newTestSequencer(rt presentation.Runtime, devTools bool, entries ...capability.Entry) (*Sequencer, *diagnostics.MemorySink, *bytes.Buffer) {
	sink := diagnostics.NewMemorySink()
	stderr := &bytes.Buffer{}
	return &Sequencer{
		Config: StartupConfig{
			Version:       "2.3.4",
			Profile:       "release",
			DevTools:      devTools,
			PrimaryWindow: presentation.PrimaryWindowID,
		},
		Sink:     sink,
		Registry: capability.NewRegistry(entries...),
		Bridge:   bridge.NewCommands(),
		Runtime:  rt,
		Stderr:   stderr,
	}, sink, stderr
}

func countLines(lines []string, want string) int {
	n := 0
	for _, line := range lines {
		if line == want {
			n++
		}
	}
	return n
}

func TestRunSuccess(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	seq, sink, stderr := newTestSequencer(rt, false, stubEntries(domain.CapabilityFilesystem, domain.CapabilityOS)...)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseSucceeded, outcome.Phase)
	assert.Nil(t, outcome.Err)
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Equal(t, 1, rt.runs)
	assert.Empty(t, stderr.String())

	lines := sink.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "PulseLogic v2.3.4 starting (release)", lines[0])
	assert.Equal(t, 1, countLines(lines, ExitMessage))
	assert.Equal(t, ExitMessage, lines[len(lines)-1])

	assert.Equal(t, []domain.Phase{
		domain.PhaseStarting,
		domain.PhaseCapabilitiesReady,
		domain.PhasePresentationRunning,
		domain.PhaseSucceeded,
	}, seq.History())
}

func TestRunBindsBridgeAndModulesBeforePresentation(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	seq, _, _ := newTestSequencer(rt, false, stubEntries(domain.CapabilityFilesystem, domain.CapabilityNetwork)...)

	var boundAtRun int
	rt.onRun = func() { boundAtRun = len(rt.bound) }

	outcome := seq.Run()

	require.Len(t, outcome.Capabilities, 2)
	for _, c := range outcome.Capabilities {
		assert.True(t, c.Ready())
	}
	assert.Equal(t, 3, boundAtRun)
	assert.Same(t, seq.Bridge, rt.bound[0])
}

func TestRunPresentationFailure(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	rt.runErr = errors.New("boom")
	seq, sink, stderr := newTestSequencer(rt, false)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseFailed, outcome.Phase)
	require.NotNil(t, outcome.Err)
	assert.Equal(t, domain.FatalRuntime, outcome.Err.Kind)
	assert.ErrorIs(t, outcome.Err, rt.runErr)
	assert.Equal(t, 1, outcome.ExitCode())

	lines := sink.Lines()
	assert.Contains(t, lines, "fatal: boom")
	assert.Zero(t, countLines(lines, ExitMessage))
	assert.Contains(t, stderr.String(), "boom")
	assert.Equal(t, "pulselogic: fatal: boom\n", stderr.String())
}

func TestRunWithoutDevToolsNeverOpensInspector(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	seq, _, _ := newTestSequencer(rt, false)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseSucceeded, outcome.Phase)
	assert.Zero(t, rt.windows[presentation.PrimaryWindowID].inspected)
}

func TestRunWithDevToolsOpensInspector(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	seq, _, _ := newTestSequencer(rt, true)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseSucceeded, outcome.Phase)
	assert.Equal(t, 1, rt.windows[presentation.PrimaryWindowID].inspected)
}

func TestRunInspectorErrorIsNotFatal(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	rt.windows[presentation.PrimaryWindowID].err = errors.New("no devtools")
	seq, _, stderr := newTestSequencer(rt, true)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseSucceeded, outcome.Phase)
	assert.Empty(t, stderr.String())
}

func TestRunWithDevToolsMissingWindow(t *testing.T) {
	rt := newFakeRuntime("settings")
	seq, sink, stderr := newTestSequencer(rt, true)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseFailed, outcome.Phase)
	require.NotNil(t, outcome.Err)
	assert.Equal(t, domain.FatalWindowMissing, outcome.Err.Kind)
	assert.Zero(t, rt.runs)
	assert.Contains(t, stderr.String(), `"main"`)
	assert.Contains(t, strings.Join(sink.Lines(), "\n"), "fatal: ")
	assert.Equal(t, []domain.Phase{
		domain.PhaseStarting,
		domain.PhaseCapabilitiesReady,
		domain.PhaseFailed,
	}, seq.History())
}

func TestRunCapabilityInitFailure(t *testing.T) {
	rt := newFakeRuntime(presentation.PrimaryWindowID)
	entries := stubEntries(domain.CapabilityFilesystem)
	entries = append(entries, capability.Entry{
		Kind: domain.CapabilityNetwork,
		Name: "http",
		Init: func() (capability.Module, error) { return nil, errors.New("no proxy") },
	})
	entries = append(entries, stubEntries(domain.CapabilityOS)...)
	seq, _, stderr := newTestSequencer(rt, false, entries...)

	outcome := seq.Run()

	assert.Equal(t, domain.PhaseFailed, outcome.Phase)
	require.NotNil(t, outcome.Err)
	assert.Equal(t, domain.FatalCapabilityInit, outcome.Err.Kind)
	var initErr *capability.InitError
	require.ErrorAs(t, outcome.Err, &initErr)
	assert.Equal(t, "http", initErr.Name)

	require.Len(t, outcome.Capabilities, 2)
	assert.False(t, outcome.Capabilities[1].Ready())
	assert.Zero(t, rt.runs)
	assert.Empty(t, rt.bound)
	assert.Contains(t, stderr.String(), "no proxy")
	assert.Equal(t, []domain.Phase{domain.PhaseStarting, domain.PhaseFailed}, seq.History())
}

func TestRunWithoutRuntime(t *testing.T) {
	seq, _, stderr := newTestSequencer(nil, false)

	outcome := seq.Run()

	require.NotNil(t, outcome.Err)
	assert.Equal(t, domain.FatalRuntime, outcome.Err.Kind)
	assert.Contains(t, stderr.String(), errNoRuntime.Error())
}

func TestDefaultStartupConfig(t *testing.T) {
	cfg := DefaultStartupConfig()

	assert.Equal(t, presentation.PrimaryWindowID, cfg.PrimaryWindow)
	assert.NotEmpty(t, cfg.Version)
	assert.Contains(t, []string{"dev", "release"}, cfg.Profile)
}
