// Package sink provides append-only destinations for comment records.
package sink

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ytcomments/record"
)

// Sentinel errors for sink operations.
var (
	// ErrLockHeld indicates another run holds the output lock.
	ErrLockHeld = errors.New("sink: output locked by another run")
	// ErrClosed indicates a write after Close.
	ErrClosed = errors.New("sink: closed")
	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("sink: unknown format")
)

// lockTimeout bounds how long Open waits for a concurrent run to finish.
const lockTimeout = 2 * time.Second

// SinkError wraps sink failures with the operation and destination.
// Use errors.As() to extract this error type:
//
//	var sinkErr *sink.SinkError
//	if errors.As(err, &sinkErr) {
//		fmt.Printf("%s %s failed: %v\n", sinkErr.Op, sinkErr.Path, sinkErr.Err)
//	}
type SinkError struct {
	// Op is the operation that failed ("open", "lock", "header", "write", "close").
	Op string
	// Path is the destination, empty for writer-backed sinks.
	Path string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the sink error.
func (e *SinkError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sink: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("sink: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *SinkError) Unwrap() error { return e.Err }

// Sink is an append-only record destination. Each Write is durable before
// it returns; rows are never rewritten or removed.
type Sink interface {
	// Write appends one record.
	Write(r record.Record) error
	// Close flushes and releases the destination.
	Close() error
}

// Format names a sink implementation.
type Format string

const (
	// FormatCSV writes a delimited text file.
	FormatCSV Format = "csv"
	// FormatSQLite writes rows into a SQLite database file.
	FormatSQLite Format = "sqlite"
)

// ParseFormat converts a flag or config value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (use csv or sqlite)", ErrUnknownFormat, s)
}

// Extension returns the file extension conventionally used for the format.
func (f Format) Extension() string {
	if f == FormatSQLite {
		return ".db"
	}
	return ".csv"
}

// Open opens the sink for the given format at path. runID tags rows in
// formats that store it.
func Open(format Format, path, runID string) (Sink, error) {
	switch format {
	case FormatCSV, "":
		return OpenCSV(path)
	case FormatSQLite:
		return OpenSQLite(path, runID)
	}
	return nil, &SinkError{Op: "open", Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
}
