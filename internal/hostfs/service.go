// Package hostfs exposes scoped filesystem access to the frontend.
package hostfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pulselogic/internal/capability"
	"pulselogic/internal/domain"
	"pulselogic/internal/logging"
	"pulselogic/internal/presentation"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// ChangeEventName is the runtime event emitted for watched path changes.
const ChangeEventName = "fs:change"

// maxReadBytes caps text reads returned over the bridge.
const maxReadBytes = 32 << 20

var (
	// ErrRelativePath is returned for paths that are not absolute.
	ErrRelativePath = errors.New("path must be absolute")
	// ErrTooLarge is returned when a file exceeds the read limit.
	ErrTooLarge = errors.New("file exceeds read limit")
)

// Entry describes one directory entry.
type Entry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size"`
}

// ChangeEvent is pushed to the frontend when a watched path changes.
type ChangeEvent struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// Service implements the filesystem capability.
type Service struct {
	rt  presentation.RuntimeContext
	log *logging.Logger

	emit      func(ctx context.Context, name string, data ...interface{})
	openFile  func(ctx context.Context, opts wailsruntime.OpenDialogOptions) (string, error)
	openDir   func(ctx context.Context, opts wailsruntime.OpenDialogOptions) (string, error)
	saveFile  func(ctx context.Context, opts wailsruntime.SaveDialogOptions) (string, error)
	newWatch  func() (*fsnotify.Watcher, error)
	watchMu   sync.Mutex
	watcher   *fsnotify.Watcher
	watched   map[string]struct{}
	watchDone chan struct{}
}

// New creates a filesystem service backed by the OS.
func New(log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{
		log:      log.Named("fs"),
		emit:     wailsruntime.EventsEmit,
		openFile: wailsruntime.OpenFileDialog,
		openDir:  wailsruntime.OpenDirectoryDialog,
		saveFile: wailsruntime.SaveFileDialog,
		newWatch: fsnotify.NewWatcher,
		watched:  map[string]struct{}{},
	}
}

// Init returns the registry initializer for this capability.
func Init(log *logging.Logger) capability.InitFunc {
	return func() (capability.Module, error) {
		return New(log), nil
	}
}

// Kind identifies the capability.
func (s *Service) Kind() domain.CapabilityKind {
	return domain.CapabilityFilesystem
}

// Startup stores the runtime context for dialogs and events.
func (s *Service) Startup(ctx context.Context) {
	s.rt.Startup(ctx)
}

// Shutdown stops any active watcher.
func (s *Service) Shutdown(ctx context.Context) {
	s.rt.Shutdown(ctx)
	s.closeWatcher()
}

// ReadTextFile returns the contents of path as text.
func (s *Service) ReadTextFile(path string) (string, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(clean)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxReadBytes {
		return "", ErrTooLarge
	}
	return string(data), nil
}

// WriteTextFile replaces path with contents, creating parent directories.
func (s *Service) WriteTextFile(path string, contents string) error {
	clean, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return fmt.Errorf("prepare parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(clean), "."+filepath.Base(clean)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := io.WriteString(tmp, contents)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write file: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, clean); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move file into place: %w", err)
	}
	return nil
}

// ReadDir lists path sorted by name, directories first.
func (s *Service) ReadDir(path string) ([]Entry, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(clean)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{
			Name:  de.Name(),
			Path:  filepath.Join(clean, de.Name()),
			IsDir: de.IsDir(),
		}
		if info, err := de.Info(); err == nil && !de.IsDir() {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// Exists reports whether path exists.
func (s *Service) Exists(path string) (bool, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(clean)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat path: %w", err)
}

// MkdirAll creates path and any missing parents.
func (s *Service) MkdirAll(path string) error {
	clean, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// Remove deletes a file or an empty directory.
func (s *Service) Remove(path string) error {
	clean, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil {
		return fmt.Errorf("remove path: %w", err)
	}
	return nil
}

// PickFile opens a native file dialog.
func (s *Service) PickFile(title string) (string, error) {
	ctx, err := s.rt.Context()
	if err != nil {
		return "", err
	}
	path, err := s.openFile(ctx, wailsruntime.OpenDialogOptions{Title: title})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// PickDirectory opens a native directory picker.
func (s *Service) PickDirectory(title string) (string, error) {
	ctx, err := s.rt.Context()
	if err != nil {
		return "", err
	}
	path, err := s.openDir(ctx, wailsruntime.OpenDialogOptions{Title: title})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// PickSaveFile opens a native save dialog.
func (s *Service) PickSaveFile(title string, defaultName string) (string, error) {
	ctx, err := s.rt.Context()
	if err != nil {
		return "", err
	}
	path, err := s.saveFile(ctx, wailsruntime.SaveDialogOptions{
		Title:           title,
		DefaultFilename: defaultName,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// Watch starts emitting ChangeEventName events for path.
func (s *Service) Watch(path string) error {
	clean, err := cleanPath(path)
	if err != nil {
		return err
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if _, ok := s.watched[clean]; ok {
		return nil
	}
	if s.watcher == nil {
		watcher, err := s.newWatch()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		s.watcher = watcher
		s.watchDone = make(chan struct{})
		go s.watchLoop(watcher, s.watchDone)
	}
	if err := s.watcher.Add(clean); err != nil {
		return fmt.Errorf("watch path: %w", err)
	}
	s.watched[clean] = struct{}{}
	return nil
}

// Unwatch stops watching path.
func (s *Service) Unwatch(path string) error {
	clean, err := cleanPath(path)
	if err != nil {
		return err
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if _, ok := s.watched[clean]; !ok || s.watcher == nil {
		return nil
	}
	delete(s.watched, clean)
	if err := s.watcher.Remove(clean); err != nil {
		return fmt.Errorf("unwatch path: %w", err)
	}
	return nil
}

// watchLoop forwards watcher events until the watcher closes.
func (s *Service) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.publish(ChangeEvent{Path: event.Name, Op: event.Op.String()})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// publish emits one change event when the runtime is available.
func (s *Service) publish(event ChangeEvent) {
	ctx, err := s.rt.Context()
	if err != nil {
		return
	}
	s.emit(ctx, ChangeEventName, event)
}

// closeWatcher stops the watcher goroutine and forgets watched paths.
func (s *Service) closeWatcher() {
	s.watchMu.Lock()
	watcher, done := s.watcher, s.watchDone
	s.watcher, s.watchDone = nil, nil
	s.watched = map[string]struct{}{}
	s.watchMu.Unlock()

	if watcher == nil {
		return
	}
	if err := watcher.Close(); err != nil {
		s.log.Warn("close watcher", zap.Error(err))
	}
	<-done
}

// cleanPath rejects blank and relative paths.
func cleanPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || !filepath.IsAbs(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrRelativePath, path)
	}
	return filepath.Clean(trimmed), nil
}
