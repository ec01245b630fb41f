package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Compile-time interface compliance check.
var _ Sink = (*CSVSink)(nil)

// CSVSink appends records to a CSV file, flushing after every row.
type CSVSink struct {
	log    logrus.FieldLogger
	path   string
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	rows   int
}

// OpenCSV opens path for appending, writing the header when the file is new.
func OpenCSV(log logrus.FieldLogger, path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	s := &CSVSink{
		log:    log.WithFields(logrus.Fields{"component": "csv_sink", "path": path}),
		path:   path,
		file:   f,
		writer: csv.NewWriter(f),
	}

	if info.Size() == 0 {
		if err := s.writeRow(Header); err != nil {
			_ = f.Close()

			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	s.log.Info("Opened snapshot log")

	return s, nil
}

// Append writes rec as one row. A cancelled ctx prevents the write entirely;
// it never interrupts a row half way.
func (s *CSVSink) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("append to closed log %s", s.path)
	}

	if err := s.writeRow(rec.Row()); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}

	s.rows++

	return nil
}

// Path returns the file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()
	s.file = nil

	s.log.WithField("rows", s.rows).Info("Closed snapshot log")

	if flushErr != nil {
		return flushErr
	}

	return closeErr
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.writer.Write(row); err != nil {
		return err
	}

	s.writer.Flush()

	return s.writer.Error()
}
