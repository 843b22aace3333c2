// Package bootstrap assembles the shell from environment configuration and
// runs it through the lifecycle sequencer.
package bootstrap

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulselogic/internal/bridge"
	"pulselogic/internal/buildinfo"
	"pulselogic/internal/capability"
	"pulselogic/internal/config"
	"pulselogic/internal/diagnostics"
	"pulselogic/internal/domain"
	"pulselogic/internal/logging"
	"pulselogic/internal/presentation"
)

// App wires configuration, logging, diagnostics, capabilities and the webview runtime.
type App struct {
	Env       *config.Env
	Settings  domain.Settings
	Store     config.Store
	Logger    *logging.Logger
	Sequencer *Sequencer
	LogPath   string
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS, stderr io.Writer) (*App, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = env.LogLevel
	logCfg.Development = env.LogDevelopment
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("version", buildinfo.Version),
	)
	if err := buildinfo.Validate(); err != nil {
		logger.Warn("build version", zap.Error(err))
	}

	store := config.NewJSONStore(env.SettingsPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	fileSink := diagnostics.NewFileSink()
	sink := diagnostics.Tee(fileSink, diagnostics.NewZapSink(logger.Named("lifecycle").Logger))
	logger.Debug("diagnostic log", zap.String("path", fileSink.Path()))

	runtime := presentation.NewWailsRuntime(presentation.Options{
		Title:     buildinfo.AppName,
		Width:     settings.WindowWidth,
		Height:    settings.WindowHeight,
		MinWidth:  config.MinWindowWidth,
		MinHeight: config.MinWindowHeight,
		Assets:    assets,
		Logger:    logger,
	})

	return &App{
		Env:      env,
		Settings: settings,
		Store:    store,
		Logger:   logger,
		LogPath:  fileSink.Path(),
		Sequencer: &Sequencer{
			Config:   DefaultStartupConfig(),
			Sink:     sink,
			Registry: capability.NewRegistry(DefaultEntries(env, store, logger)...),
			Bridge:   bridge.NewCommands(),
			Runtime:  runtime,
			Stderr:   stderr,
			Logger:   logger.Named("bootstrap"),
		},
	}, nil
}

// Run starts the shell and blocks until the window closes.
func (a *App) Run() domain.Outcome {
	defer func() { _ = a.Logger.Sync() }()
	return a.Sequencer.Run()
}
