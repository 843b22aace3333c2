// Package presentation is the seam between the shell and the webview runtime.
package presentation

import (
	"context"
	"io/fs"
	"net/http"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"pulselogic/internal/logging"
)

// PrimaryWindowID identifies the main application window.
const PrimaryWindowID = "main"

// Window is a handle to one presentation window.
type Window interface {
	ID() string
	OpenInspector() error
}

// Runtime hosts the frontend and blocks in Run for the whole user session.
type Runtime interface {
	Bind(services ...any)
	Window(id string) (Window, bool)
	Run() error
}

// StartupHook is implemented by bound services that need the runtime context.
type StartupHook interface {
	Startup(ctx context.Context)
}

// ShutdownHook is implemented by bound services that release resources on exit.
type ShutdownHook interface {
	Shutdown(ctx context.Context)
}

// Options configures the Wails application window.
type Options struct {
	Title     string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	// Assets serves the embedded frontend; AssetDir is used when Assets is nil.
	Assets   fs.FS
	AssetDir string
	Logger   *logging.Logger
}

// WailsRuntime runs the frontend inside a Wails webview.
type WailsRuntime struct {
	opts Options
	run  func(*options.App) error

	mu    sync.Mutex
	bound []any
	main  *wailsWindow
}

// NewWailsRuntime creates a runtime with a single primary window.
func NewWailsRuntime(opts Options) *WailsRuntime {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.AssetDir == "" {
		opts.AssetDir = "./frontend/dist"
	}
	return &WailsRuntime{
		opts: opts,
		run:  wails.Run,
		main: &wailsWindow{id: PrimaryWindowID},
	}
}

// Bind registers services whose exported methods become frontend calls.
func (r *WailsRuntime) Bind(services ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, svc := range services {
		if svc != nil {
			r.bound = append(r.bound, svc)
		}
	}
}

// Window returns the window registered under id.
func (r *WailsRuntime) Window(id string) (Window, bool) {
	if id != r.main.id {
		return nil, false
	}
	return r.main, true
}

// Run starts the Wails application and blocks until it exits.
func (r *WailsRuntime) Run() error {
	return r.run(r.appOptions())
}

// appOptions builds the Wails configuration from bound services and window state.
func (r *WailsRuntime) appOptions() *options.App {
	r.mu.Lock()
	bound := append([]any(nil), r.bound...)
	inspector := r.main.inspectorRequested()
	r.mu.Unlock()

	assetOptions := &assetserver.Options{}
	if r.opts.Assets != nil {
		assetOptions.Assets = r.opts.Assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir(r.opts.AssetDir))
	}

	bind := make([]interface{}, 0, len(bound))
	bind = append(bind, bound...)

	return &options.App{
		Title:       r.opts.Title,
		Width:       r.opts.Width,
		Height:      r.opts.Height,
		MinWidth:    r.opts.MinWidth,
		MinHeight:   r.opts.MinHeight,
		AssetServer: assetOptions,
		OnStartup: func(ctx context.Context) {
			for _, svc := range bound {
				if hook, ok := svc.(StartupHook); ok {
					hook.Startup(ctx)
				}
			}
		},
		OnShutdown: func(ctx context.Context) {
			for _, svc := range bound {
				if hook, ok := svc.(ShutdownHook); ok {
					hook.Shutdown(ctx)
				}
			}
		},
		Bind:     bind,
		Logger:   r.opts.Logger.Wails(),
		LogLevel: r.opts.Logger.WailsLevel(),
		Debug: options.Debug{
			OpenInspectorOnStartup: inspector,
		},
	}
}

// wailsWindow is the single Wails window; inspector requests apply at Run.
type wailsWindow struct {
	mu        sync.Mutex
	id        string
	inspector bool
}

func (w *wailsWindow) ID() string {
	return w.id
}

// OpenInspector asks Wails to open the web inspector once the window is shown.
func (w *wailsWindow) OpenInspector() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inspector = true
	return nil
}

func (w *wailsWindow) inspectorRequested() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inspector
}
