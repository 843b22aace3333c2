package presentation

import (
	"context"
	"errors"
	"sync"
)

// ErrNoRuntime is returned by runtime-dependent calls made before startup or after shutdown.
var ErrNoRuntime = errors.New("runtime context is not initialized")

// RuntimeContext stores the context Wails hands to OnStartup.
// Bound services hold one and forward their Startup and Shutdown hooks to it.
type RuntimeContext struct {
	mu  sync.Mutex
	ctx context.Context
}

// Startup stores the runtime context.
func (c *RuntimeContext) Startup(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// Shutdown clears the runtime context.
func (c *RuntimeContext) Shutdown(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = nil
}

// Context returns the stored context or ErrNoRuntime.
func (c *RuntimeContext) Context() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return nil, ErrNoRuntime
	}
	return c.ctx, nil
}
