// Package updater checks the release feed for newer builds of the shell.
package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"go.uber.org/zap"

	"pulselogic/internal/capability"
	"pulselogic/internal/config"
	"pulselogic/internal/domain"
	"pulselogic/internal/logging"
)

const checkTimeout = 30 * time.Second

// ErrDevelopmentVersion is returned when the running build has no release version.
var ErrDevelopmentVersion = errors.New("cannot check updates for a development version")

// Release is the subset of release metadata the shell reports.
type Release struct {
	Version      string
	ReleaseNotes string
	PublishedAt  time.Time
}

// UpdateInfo is the result of one update check.
type UpdateInfo struct {
	CurrentVersion string    `json:"currentVersion"`
	LatestVersion  string    `json:"latestVersion,omitempty"`
	Available      bool      `json:"available"`
	Dismissed      bool      `json:"dismissed"`
	ReleaseNotes   string    `json:"releaseNotes,omitempty"`
	ReleaseURL     string    `json:"releaseUrl,omitempty"`
	PublishedAt    time.Time `json:"publishedAt,omitempty"`
	CheckedAt      time.Time `json:"checkedAt"`
}

// latestFunc looks up the newest release for a repository slug.
type latestFunc func(ctx context.Context, slug string) (Release, bool, error)

// Service implements the update-check capability.
type Service struct {
	repo    string
	current string
	store   config.Store
	log     *logging.Logger
	latest  latestFunc
	now     func() time.Time
}

// New creates an update checker for repo ("owner/name") at the given version.
func New(repo string, current string, store config.Store, log *logging.Logger) (*Service, error) {
	if log == nil {
		log = logging.NewNop()
	}
	repo = strings.TrimSpace(repo)
	if strings.Count(repo, "/") != 1 || strings.HasPrefix(repo, "/") || strings.HasSuffix(repo, "/") {
		return nil, fmt.Errorf("update repository must be owner/name, got %q", repo)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Service{
		repo:    repo,
		current: current,
		store:   store,
		log:     log.Named("updater"),
		latest:  githubLatest(updater),
		now:     time.Now,
	}, nil
}

// Init returns the registry initializer for this capability.
func Init(repo string, current string, store config.Store, log *logging.Logger) capability.InitFunc {
	return func() (capability.Module, error) {
		return New(repo, current, store, log)
	}
}

// Kind identifies the capability.
func (s *Service) Kind() domain.CapabilityKind {
	return domain.CapabilityUpdater
}

// Check compares the running version with the latest published release.
func (s *Service) Check() (UpdateInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	return s.CheckContext(ctx)
}

// CheckContext is Check with caller-controlled cancellation.
func (s *Service) CheckContext(ctx context.Context) (UpdateInfo, error) {
	current, err := semver.NewVersion(s.current)
	if err != nil || s.current == "dev" {
		return UpdateInfo{}, ErrDevelopmentVersion
	}

	info := UpdateInfo{
		CurrentVersion: current.String(),
		CheckedAt:      s.now().UTC(),
	}

	release, found, err := s.latest(ctx, s.repo)
	if err != nil {
		return UpdateInfo{}, fmt.Errorf("error detecting latest version: %w", err)
	}
	s.recordCheck(info.CheckedAt)
	if !found {
		return info, nil
	}

	latest, err := semver.NewVersion(release.Version)
	if err != nil {
		return UpdateInfo{}, fmt.Errorf("parse latest version %q: %w", release.Version, err)
	}

	info.LatestVersion = latest.String()
	info.Available = latest.GreaterThan(current)
	info.ReleaseNotes = release.ReleaseNotes
	info.PublishedAt = release.PublishedAt
	info.ReleaseURL = "https://github.com/" + s.repo + "/releases/latest"
	if info.Available {
		info.Dismissed = s.dismissed() == info.LatestVersion
	}
	return info, nil
}

// LastChecked returns the time of the last successful lookup.
func (s *Service) LastChecked() time.Time {
	if s.store == nil {
		return time.Time{}
	}
	settings, err := s.store.Load()
	if err != nil {
		return time.Time{}
	}
	return settings.LastUpdateCheck
}

// Dismiss hides the update prompt for version until a newer one ships.
func (s *Service) Dismiss(version string) error {
	parsed, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return fmt.Errorf("parse version %q: %w", version, err)
	}
	if s.store == nil {
		return errors.New("settings store is not configured")
	}

	settings, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings.DismissedVersion = parsed.String()
	if err := s.store.Save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Service) dismissed() string {
	if s.store == nil {
		return ""
	}
	settings, err := s.store.Load()
	if err != nil {
		return ""
	}
	return settings.DismissedVersion
}

// recordCheck persists the check time; failures are logged only.
func (s *Service) recordCheck(at time.Time) {
	if s.store == nil {
		return
	}
	settings, err := s.store.Load()
	if err != nil {
		s.log.Warn("load settings for update check", zap.Error(err))
		return
	}
	settings.LastUpdateCheck = at
	if err := s.store.Save(settings); err != nil {
		s.log.Warn("save update check time", zap.Error(err))
	}
}

// githubLatest adapts a selfupdate updater to latestFunc.
func githubLatest(updater *selfupdate.Updater) latestFunc {
	return func(ctx context.Context, slug string) (Release, bool, error) {
		latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(slug))
		if err != nil || !found {
			return Release{}, found, err
		}
		return Release{
			Version:      latest.Version(),
			ReleaseNotes: latest.ReleaseNotes,
			PublishedAt:  latest.PublishedAt,
		}, true, nil
	}
}
