package domain

// CapabilityKind names one host permission surface exposed to the frontend.
type CapabilityKind string

const (
	CapabilityFilesystem   CapabilityKind = "filesystem"
	CapabilityNetwork      CapabilityKind = "network"
	CapabilityProcess      CapabilityKind = "process"
	CapabilityOS           CapabilityKind = "os"
	CapabilityNotification CapabilityKind = "notification"
	CapabilityUpdater      CapabilityKind = "updater"
)

// CapabilityStatus indicates whether a capability finished initialization.
type CapabilityStatus string

const (
	CapabilityStatusReady  CapabilityStatus = "ready"
	CapabilityStatusFailed CapabilityStatus = "failed"
)

// Capability describes one enabled host capability and its init outcome.
type Capability struct {
	Kind    CapabilityKind   `json:"kind"`
	Name    string           `json:"name"`
	Status  CapabilityStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// Ready reports whether the capability initialized successfully.
func (c Capability) Ready() bool {
	return c.Status == CapabilityStatusReady
}
