// Package notify delivers user notifications to the desktop and the frontend.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	goruntime "runtime"
	"strings"

	"go.uber.org/zap"

	"pulselogic/internal/buildinfo"
	"pulselogic/internal/capability"
	"pulselogic/internal/domain"
	"pulselogic/internal/logging"
	"pulselogic/internal/presentation"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventName is the runtime event carrying each published notification.
const EventName = "notification"

// PermissionGranted is the only permission state the desktop shell reports.
const PermissionGranted = "granted"

// ErrEmptyTitle is returned when Send receives a notification without a title.
var ErrEmptyTitle = errors.New("notification title is required")

// Service implements the notification capability.
type Service struct {
	rt      presentation.RuntimeContext
	log     *logging.Logger
	history *History
	emit    func(ctx context.Context, name string, data ...interface{})
	deliver func(title, body string) error
}

// New creates a notification service with a bounded history.
func New(log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{
		log:     log.Named("notify"),
		history: NewHistory(200),
		emit:    wailsruntime.EventsEmit,
		deliver: deliverNative,
	}
}

// Init returns the registry initializer for this capability.
func Init(log *logging.Logger) capability.InitFunc {
	return func() (capability.Module, error) {
		return New(log), nil
	}
}

// Kind identifies the capability.
func (s *Service) Kind() domain.CapabilityKind {
	return domain.CapabilityNotification
}

// Startup stores the runtime context for event emission.
func (s *Service) Startup(ctx context.Context) {
	s.rt.Startup(ctx)
}

// Shutdown clears the runtime context.
func (s *Service) Shutdown(ctx context.Context) {
	s.rt.Shutdown(ctx)
}

// IsPermissionGranted reports whether notifications may be shown.
func (s *Service) IsPermissionGranted() bool {
	return true
}

// RequestPermission returns the permission state; desktop builds never prompt.
func (s *Service) RequestPermission() string {
	return PermissionGranted
}

// Send records n, pushes it to the frontend, and shows it natively.
// Native delivery failures are logged and do not fail the call.
func (s *Service) Send(n Notification) (Notification, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return Notification{}, ErrEmptyTitle
	}

	published := s.history.Publish(n)
	if ctx, err := s.rt.Context(); err == nil {
		s.emit(ctx, EventName, published)
	}
	if err := s.deliver(published.Title, published.Body); err != nil {
		s.log.Warn("native notification failed", zap.Error(err))
	}
	return published, nil
}

// History returns notifications published after sinceSeq.
func (s *Service) History(sinceSeq int64) []Notification {
	return s.history.Since(sinceSeq)
}

// Recent returns up to limit of the newest notifications, newest first.
func (s *Service) Recent(limit int) []Notification {
	return s.history.Latest(limit)
}

// Alerts returns warning and error notifications published after sinceSeq.
func (s *Service) Alerts(sinceSeq int64) []Notification {
	return s.history.AtLeast(LevelWarning, sinceSeq)
}

// Counts returns the number of buffered notifications per level.
func (s *Service) Counts() map[Level]int {
	return s.history.Counts()
}

// deliverNative shows a desktop notification using the platform's notifier.
func deliverNative(title, body string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		script := `display notification "` + appleScriptQuote(body) + `" with title "` + appleScriptQuote(title) + `"`
		cmd = exec.Command("osascript", "-e", script)
	case "windows":
		script := fmt.Sprintf(
			"[void][System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms');"+
				"$n=New-Object System.Windows.Forms.NotifyIcon;$n.Icon=[System.Drawing.SystemIcons]::Information;"+
				"$n.Visible=$true;$n.ShowBalloonTip(5000,'%s','%s','Info')",
			psQuote(title), psQuote(body))
		cmd = exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	default:
		if _, err := exec.LookPath("notify-send"); err != nil {
			return fmt.Errorf("notify-send not available: %w", err)
		}
		cmd = exec.Command("notify-send", "--app-name="+buildinfo.AppName, title, body)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch notifier: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// appleScriptQuote escapes s for an AppleScript double-quoted string literal.
func appleScriptQuote(s string) string {
	return appleScriptEscaper.Replace(s)
}

// psQuote escapes single quotes for a PowerShell single-quoted string.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
