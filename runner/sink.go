package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Banner prefixes every line gopiumlens itself writes into a sink
const Banner = "gopium 🌺: "

// Sink is an append-only destination for invocation output. One sink is
// shared by every invocation and makes no attempt to separate them.
type Sink interface {
	// Clear starts a new invocation section
	Clear()
	// Show brings the sink to the user's attention
	Show()
	// AppendLine appends a single line without trailing newline
	AppendLine(line string)
}

// ConsoleSink writes lines to a terminal, highlighting banner lines
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a console sink writing to out (os.Stdout when nil)
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = color.Output
	}

	return &ConsoleSink{out: out}
}

// Clear implements Sink. Terminal output is never erased.
func (s *ConsoleSink) Clear() {}

// Show implements Sink
func (s *ConsoleSink) Show() {}

// AppendLine implements Sink
func (s *ConsoleSink) AppendLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.HasPrefix(line, Banner) {
		color.New(color.FgCyan).Fprintln(s.out, line)
		return
	}

	fmt.Fprintln(s.out, line)
}

// FileSink appends timestamped lines to a log file so output can be
// inspected after the terminal is gone
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// OpenFileSink creates (or reuses) the log file at path
func OpenFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	return &FileSink{file: f, now: time.Now}, nil
}

// Close releases the file handle
func (s *FileSink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}

	return s.file.Close()
}

// Clear implements Sink. The file is append-only, so a separator is written instead.
func (s *FileSink) Clear() {
	s.write("----")
}

// Show implements Sink
func (s *FileSink) Show() {}

// AppendLine implements Sink
func (s *FileSink) AppendLine(line string) {
	s.write(line)
}

func (s *FileSink) write(line string) {
	if s == nil || s.file == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := s.now().Format(time.RFC3339)
	fmt.Fprintf(s.file, "[%s] %s\n", timestamp, strings.TrimRight(line, "\n"))
}

// MemorySink keeps lines in memory
type MemorySink struct {
	mu    sync.Mutex
	lines []string
	shown int
}

// Clear implements Sink
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Show implements Sink
func (s *MemorySink) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown++
}

// AppendLine implements Sink
func (s *MemorySink) AppendLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

// Lines returns a copy of the collected lines
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.lines...)
}

// Shown reports how many times Show was called
func (s *MemorySink) Shown() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shown
}

// MultiSink fans every call out to all sinks
type MultiSink []Sink

// Clear implements Sink
func (m MultiSink) Clear() {
	for _, s := range m {
		s.Clear()
	}
}

// Show implements Sink
func (m MultiSink) Show() {
	for _, s := range m {
		s.Show()
	}
}

// AppendLine implements Sink
func (m MultiSink) AppendLine(line string) {
	for _, s := range m {
		s.AppendLine(line)
	}
}
