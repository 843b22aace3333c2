package diagnostics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// FileName is the fixed name of the diagnostic log inside the resolved directory.
const FileName = "pulselogic-diagnostics.log"

// DirCandidates lists environment variables consulted, in priority order,
// when locating the diagnostic log directory.
var DirCandidates = []string{"PULSELOGIC_LOG_DIR", "TMPDIR", "TEMP", "TMP"}

// Sink records lifecycle messages. Record never fails observably.
type Sink interface {
	Record(message string)
}

// FileSink appends one line per message to a plain-text file.
type FileSink struct {
	mu       sync.Mutex
	path     string
	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

// NewFileSink resolves the log directory from the process environment.
func NewFileSink() *FileSink {
	return NewFileSinkInDir(ResolveDir(os.Getenv))
}

// NewFileSinkInDir writes to FileName under dir.
func NewFileSinkInDir(dir string) *FileSink {
	return &FileSink{
		path:     filepath.Join(dir, FileName),
		openFile: os.OpenFile,
	}
}

// Path returns the log file location.
func (s *FileSink) Path() string {
	return s.path
}

// Record appends message and a newline. Open and write errors are discarded.
func (s *FileSink) Record(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.openFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	_, _ = io.WriteString(file, message+"\n")
	_ = file.Close()
}

// ResolveDir returns the first non-blank candidate or the platform default.
func ResolveDir(getenv func(string) string) string {
	if getenv != nil {
		for _, key := range DirCandidates {
			if dir := strings.TrimSpace(getenv(key)); dir != "" {
				return dir
			}
		}
	}
	return defaultDir()
}

// defaultDir is the hard-coded fallback when no candidate is set.
func defaultDir() string {
	if goruntime.GOOS == "windows" {
		return `C:\Windows\Temp`
	}
	return "/tmp"
}

// MemorySink keeps messages in memory for tests and in-process inspection.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends message to the in-memory log.
func (s *MemorySink) Record(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, message)
}

// Lines returns a snapshot of recorded messages in call order.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// ZapSink mirrors lifecycle messages into the structured logger.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps a zap logger as a Sink.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log}
}

// Record logs message at info level.
func (s *ZapSink) Record(message string) {
	s.log.Info(message, zap.String("source", "lifecycle"))
}

type teeSink []Sink

// Record forwards message to every wrapped sink.
func (t teeSink) Record(message string) {
	for _, sink := range t {
		record(sink, message)
	}
}

// Tee fans one Record call out to several sinks. Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	out := make(teeSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

// ReportFatal records message in sink and writes it to stderr.
func ReportFatal(sink Sink, stderr io.Writer, message string) {
	record(sink, message)
	if stderr != nil {
		_, _ = fmt.Fprintf(stderr, "pulselogic: %s\n", message)
	}
}

// record isolates callers from sinks that panic.
func record(sink Sink, message string) {
	if sink == nil {
		return
	}
	defer func() { _ = recover() }()
	sink.Record(message)
}
