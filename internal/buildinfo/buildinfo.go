package buildinfo

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// AppName is the product name used in banners, window titles, and file names.
const AppName = "PulseLogic"

// Version is the application version, overridden at build time with
// -ldflags "-X pulselogic/internal/buildinfo.Version=1.2.3".
var Version = "1.0.0"

// Profile names the build configuration the binary was compiled with.
func Profile() string {
	if DevTools {
		return "dev"
	}
	return "release"
}

// Validate reports whether Version is a well-formed semantic version.
func Validate() error {
	if _, err := semver.StrictNewVersion(Version); err != nil {
		return fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	return nil
}
