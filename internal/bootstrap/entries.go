package bootstrap

import (
	"pulselogic/internal/buildinfo"
	"pulselogic/internal/capability"
	"pulselogic/internal/config"
	"pulselogic/internal/domain"
	"pulselogic/internal/hostfs"
	"pulselogic/internal/hostnet"
	"pulselogic/internal/hostos"
	"pulselogic/internal/hostproc"
	"pulselogic/internal/logging"
	"pulselogic/internal/notify"
	"pulselogic/internal/updater"
)

// DefaultEntries is the capability table registered at process start.
func DefaultEntries(env *config.Env, store config.Store, log *logging.Logger) []capability.Entry {
	if env == nil {
		env = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}

	return []capability.Entry{
		{Kind: domain.CapabilityFilesystem, Name: "fs", Init: hostfs.Init(log)},
		{Kind: domain.CapabilityNetwork, Name: "http", Init: hostnet.Init(hostnet.Config{
			Timeout:      env.HTTPTimeout,
			RetryMax:     env.HTTPRetries,
			MaxBodyBytes: env.MaxBodyBytes(),
		}, log)},
		{Kind: domain.CapabilityProcess, Name: "shell", Init: hostproc.Init(env.ShellAllow, log)},
		{Kind: domain.CapabilityOS, Name: "os", Init: hostos.Init()},
		{Kind: domain.CapabilityNotification, Name: "notification", Init: notify.Init(log)},
		{Kind: domain.CapabilityUpdater, Name: "updater", Init: updater.Init(env.UpdateRepo, buildinfo.Version, store, log)},
	}
}
