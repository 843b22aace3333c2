// Package capability holds the ordered table of host capability modules
// exposed to the frontend and initializes them exactly once per process.
package capability

import (
	"errors"
	"fmt"
	"sync"

	"pulselogic/internal/domain"
)

// Module is an initialized host capability bound into the presentation runtime.
type Module interface {
	Kind() domain.CapabilityKind
}

// InitFunc constructs one capability module.
type InitFunc func() (Module, error)

// Entry pairs a capability identity with its initializer.
type Entry struct {
	Kind domain.CapabilityKind
	Name string
	Init InitFunc
}

// Handle is the result of initializing one entry.
type Handle struct {
	Capability domain.Capability
	Module     Module
}

// InitError reports which entry stopped initialization.
type InitError struct {
	Kind domain.CapabilityKind
	Name string
	Err  error
}

// Error formats the failing capability and cause.
func (e *InitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("initialize %s capability %q: %v", e.Kind, e.Name, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var (
	errNilInit      = errors.New("no initializer configured")
	errNilModule    = errors.New("initializer returned no module")
	errKindMismatch = errors.New("module kind does not match entry")
)

// Registry initializes entries in insertion order.
type Registry struct {
	entries []Entry

	once    sync.Once
	handles []Handle
	err     error
}

// NewRegistry creates a registry over a fixed entry table.
func NewRegistry(entries ...Entry) *Registry {
	return &Registry{entries: append([]Entry(nil), entries...)}
}

// Len returns the number of configured entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// InitializeAll runs every initializer once, in order. Later calls return
// the memoized result. Initialization stops at the first failing entry;
// the returned handles then end with that entry marked failed.
func (r *Registry) InitializeAll() ([]Handle, error) {
	r.once.Do(func() {
		r.handles, r.err = r.initialize()
	})
	return append([]Handle(nil), r.handles...), r.err
}

func (r *Registry) initialize() ([]Handle, error) {
	handles := make([]Handle, 0, len(r.entries))
	for _, entry := range r.entries {
		module, err := runInit(entry)
		if err != nil {
			handles = append(handles, Handle{Capability: domain.Capability{
				Kind:    entry.Kind,
				Name:    entry.Name,
				Status:  domain.CapabilityStatusFailed,
				Message: err.Error(),
			}})
			return handles, &InitError{Kind: entry.Kind, Name: entry.Name, Err: err}
		}

		handles = append(handles, Handle{
			Capability: domain.Capability{
				Kind:   entry.Kind,
				Name:   entry.Name,
				Status: domain.CapabilityStatusReady,
			},
			Module: module,
		})
	}
	return handles, nil
}

// runInit invokes one initializer and validates the module it returns.
func runInit(entry Entry) (module Module, err error) {
	if entry.Init == nil {
		return nil, errNilInit
	}
	defer func() {
		if r := recover(); r != nil {
			module = nil
			err = fmt.Errorf("initializer panicked: %v", r)
		}
	}()

	module, err = entry.Init()
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, errNilModule
	}
	if module.Kind() != entry.Kind {
		return nil, fmt.Errorf("%w: got %s", errKindMismatch, module.Kind())
	}
	return module, nil
}

// Capabilities extracts the descriptors from handles.
func Capabilities(handles []Handle) []domain.Capability {
	out := make([]domain.Capability, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.Capability)
	}
	return out
}

// Modules extracts the initialized modules for runtime binding.
func Modules(handles []Handle) []Module {
	out := make([]Module, 0, len(handles))
	for _, h := range handles {
		if h.Module != nil {
			out = append(out, h.Module)
		}
	}
	return out
}
