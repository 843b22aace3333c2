// Package hostproc exposes process control and allowlisted command execution.
package hostproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pulselogic/internal/capability"
	"pulselogic/internal/domain"
	"pulselogic/internal/logging"
	"pulselogic/internal/presentation"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const defaultCommandTimeout = 2 * time.Minute

var (
	// ErrCommandNotAllowed is returned for executables outside the allowlist.
	ErrCommandNotAllowed = errors.New("command is not allowed")
	// ErrInvalidTarget is returned when Open receives something it cannot open.
	ErrInvalidTarget = errors.New("target must be an http, https, or mailto URL or an absolute path")
)

// CommandResult captures one external command invocation.
type CommandResult struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// CommandError wraps a failed invocation with its captured output.
type CommandError struct {
	Result CommandResult
	Err    error
}

// Error formats the command and exit code.
func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s failed (exit=%d): %v", e.Result.Command, e.Result.ExitCode, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Service implements the process capability.
type Service struct {
	rt      presentation.RuntimeContext
	log     *logging.Logger
	allowed map[string]struct{}
	timeout time.Duration
	runner  commandRunner
	opener  func(target string) error
	quit    func(ctx context.Context)
}

// New creates a process service that may run the named executables.
func New(allow []string, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	allowed := make(map[string]struct{}, len(allow))
	for _, name := range allow {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return &Service{
		log:     log.Named("process"),
		allowed: allowed,
		timeout: defaultCommandTimeout,
		runner:  &execRunner{},
		opener:  openWithSystem,
		quit:    wailsruntime.Quit,
	}
}

// Init returns the registry initializer for this capability.
func Init(allow []string, log *logging.Logger) capability.InitFunc {
	return func() (capability.Module, error) {
		return New(allow, log), nil
	}
}

// Kind identifies the capability.
func (s *Service) Kind() domain.CapabilityKind {
	return domain.CapabilityProcess
}

// Startup stores the runtime context used by Exit.
func (s *Service) Startup(ctx context.Context) {
	s.rt.Startup(ctx)
}

// Shutdown clears the runtime context.
func (s *Service) Shutdown(ctx context.Context) {
	s.rt.Shutdown(ctx)
}

// AllowedCommands lists the executables Run accepts.
func (s *Service) AllowedCommands() []string {
	names := make([]string, 0, len(s.allowed))
	for name := range s.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes an allowlisted command and returns its captured output.
func (s *Service) Run(name string, args []string) (CommandResult, error) {
	command := strings.TrimSpace(name)
	if _, ok := s.allowed[command]; !ok {
		return CommandResult{}, fmt.Errorf("%w: %q", ErrCommandNotAllowed, name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, err := s.runner.Run(ctx, command, args...)
	result := CommandResult{
		Command:  command,
		Args:     append([]string(nil), args...),
		ExitCode: out.ExitCode,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
	}
	if err != nil {
		s.log.Warn("command failed", zap.String("command", command), zap.Int("exit_code", out.ExitCode), zap.Error(err))
		return result, &CommandError{Result: result, Err: err}
	}
	return result, nil
}

// Open hands target to the platform opener.
func (s *Service) Open(target string) error {
	trimmed := strings.TrimSpace(target)
	if !openable(trimmed) {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return s.opener(trimmed)
}

// Exit asks the runtime to close the application.
func (s *Service) Exit() error {
	ctx, err := s.rt.Context()
	if err != nil {
		return err
	}
	s.quit(ctx)
	return nil
}

// openable accepts web and mail URLs or absolute filesystem paths.
func openable(target string) bool {
	if target == "" {
		return false
	}
	if filepath.IsAbs(target) {
		return true
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "mailto":
		return parsed.Opaque != ""
	default:
		return false
	}
}

// openWithSystem launches the platform opener for the provided target.
func openWithSystem(target string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch opener: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
