// Package hostos answers OS metadata queries from the frontend.
package hostos

import (
	"bufio"
	"context"
	"os"
	goruntime "runtime"
	"strings"

	"pulselogic/internal/capability"
	"pulselogic/internal/domain"
	"pulselogic/internal/presentation"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Info describes the host the shell is running on.
type Info struct {
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	Family    string `json:"family"`
	Version   string `json:"version,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	Locale    string `json:"locale,omitempty"`
	NumCPU    int    `json:"numCpu"`
	TempDir   string `json:"tempDir"`
	BuildType string `json:"buildType,omitempty"`
}

// Service implements the OS metadata capability.
type Service struct {
	rt          presentation.RuntimeContext
	getenv      func(string) string
	hostname    func() (string, error)
	readRelease func() string
	environment func(ctx context.Context) wailsruntime.EnvironmentInfo
}

// New creates an OS metadata service.
func New() *Service {
	return &Service{
		getenv:      os.Getenv,
		hostname:    os.Hostname,
		readRelease: readOSRelease,
		environment: wailsruntime.Environment,
	}
}

// Init returns the registry initializer for this capability.
func Init() capability.InitFunc {
	return func() (capability.Module, error) {
		return New(), nil
	}
}

// Kind identifies the capability.
func (s *Service) Kind() domain.CapabilityKind {
	return domain.CapabilityOS
}

// Startup stores the runtime context used for build metadata.
func (s *Service) Startup(ctx context.Context) {
	s.rt.Startup(ctx)
}

// Shutdown clears the runtime context.
func (s *Service) Shutdown(ctx context.Context) {
	s.rt.Shutdown(ctx)
}

// Info collects host metadata. Unavailable fields are left empty.
func (s *Service) Info() Info {
	info := Info{
		Platform: goruntime.GOOS,
		Arch:     goruntime.GOARCH,
		Family:   family(goruntime.GOOS),
		Version:  s.readRelease(),
		Locale:   s.locale(),
		NumCPU:   goruntime.NumCPU(),
		TempDir:  os.TempDir(),
	}
	if name, err := s.hostname(); err == nil {
		info.Hostname = name
	}
	if ctx, err := s.rt.Context(); err == nil {
		info.BuildType = s.environment(ctx).BuildType
	}
	return info
}

// locale returns the POSIX locale without encoding suffix.
func (s *Service) locale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := strings.TrimSpace(s.getenv(key))
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if idx := strings.IndexAny(value, ".@"); idx >= 0 {
			value = value[:idx]
		}
		return strings.ReplaceAll(value, "_", "-")
	}
	return ""
}

// family groups platforms the way frontends usually branch on them.
func family(goos string) string {
	if goos == "windows" {
		return "windows"
	}
	return "unix"
}

// readOSRelease returns PRETTY_NAME from /etc/os-release on Linux.
func readOSRelease() string {
	if goruntime.GOOS != "linux" {
		return ""
	}
	file, err := os.Open("/etc/os-release")
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}
