package sink

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"ytcomments/record"
)

// CSVSink appends records as comma-separated rows with minimal quoting.
// Every Write is flushed (and fsynced for files) before it returns.
type CSVSink struct {
	path   string
	w      *csv.Writer
	file   *os.File
	lock   *FileLock
	sync   func() error
	closed bool
}

// NewCSVSink writes rows to w. The header row is written first when
// writeHeader is set.
func NewCSVSink(w io.Writer, writeHeader bool) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w)}
	if writeHeader {
		if err := s.writeRow("header", record.Header); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// OpenCSV opens path for appending, creating it and its parent directory
// as needed. The header is written only when the file is new or empty, so
// reopening an existing output never repeats it. The output stays locked
// until Close.
func OpenCSV(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &SinkError{Op: "open", Path: path, Err: err}
	}

	lock := NewFileLock(path)
	if err := lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		lock.Unlock()
		return nil, &SinkError{Op: "open", Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		lock.Unlock()
		return nil, &SinkError{Op: "open", Path: path, Err: err}
	}

	s := &CSVSink{
		path: path,
		w:    csv.NewWriter(f),
		file: f,
		lock: lock,
		sync: f.Sync,
	}

	if info.Size() == 0 {
		if err := s.writeRow("header", record.Header); err != nil {
			f.Close()
			lock.Unlock()
			return nil, err
		}
	}

	return s, nil
}

// Path returns the output file path, empty for writer-backed sinks.
func (s *CSVSink) Path() string {
	return s.path
}

// Write appends one record.
func (s *CSVSink) Write(r record.Record) error {
	if s.closed {
		return &SinkError{Op: "write", Path: s.path, Err: ErrClosed}
	}
	return s.writeRow("write", r.Fields())
}

func (s *CSVSink) writeRow(op string, fields []string) error {
	if err := s.w.Write(fields); err != nil {
		return &SinkError{Op: op, Path: s.path, Err: err}
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return &SinkError{Op: op, Path: s.path, Err: err}
	}
	if s.sync != nil {
		if err := s.sync(); err != nil {
			return &SinkError{Op: op, Path: s.path, Err: err}
		}
	}
	return nil
}

// Close flushes pending data and releases the file and its lock.
// Closing twice is a no-op.
func (s *CSVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	errs := []error{s.w.Error()}
	if s.file != nil {
		errs = append(errs, s.file.Close())
	}
	if s.lock != nil {
		errs = append(errs, s.lock.Unlock())
	}

	if err := errors.Join(errs...); err != nil {
		return &SinkError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
