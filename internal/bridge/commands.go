// Package bridge holds the commands the frontend may invoke directly on the shell.
package bridge

import "pulselogic/internal/buildinfo"

// Commands is bound into the presentation runtime as the frontend's command surface.
type Commands struct {
	version string
}

// NewCommands binds the build-time version.
func NewCommands() *Commands {
	return &Commands{version: buildinfo.Version}
}

// GetAppVersion returns the version the binary was built with.
func (c *Commands) GetAppVersion() string {
	return c.version
}
