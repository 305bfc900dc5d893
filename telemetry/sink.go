package telemetry

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink is an append-only, newline-delimited telemetry writer: one JSON
// object per line, buffered with line-grained flush. Each line write and
// Close hold an internal mutex, so writes from several goroutines do not
// interleave within a line (§5).
type Sink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	log    *logrus.Entry
}

// Create opens path for appending and writes the leading system-info
// record. Truncates any prior content at the given path (a fresh run gets
// a fresh file); append-across-runs is an orchestration-glue concern.
func Create(path string, sysInfo SystemInfo, log *logrus.Entry) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Sink{
		w:      bufio.NewWriter(f),
		closer: f,
		log:    log.WithField("component", "telemetry"),
	}
	sysInfo.Type = "system_info"
	if err := s.writeLine(sysInfo); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// WriteRow appends one window telemetry row.
func (s *Sink) WriteRow(row WindowRow) error {
	row.Type = "window"
	if err := s.writeLine(row); err != nil {
		s.log.WithError(err).Error("failed to write telemetry row")
		return err
	}
	return nil
}

// WriteError appends a terminal error record (§7: "the scheduler writes a
// final telemetry error record tagged by kind before exit").
func (s *Sink) WriteError(rec ErrorRecord) error {
	rec.Type = "error"
	return s.writeLine(rec)
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.closer.Close()
}
