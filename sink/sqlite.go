package sink

import (
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"ytcomments/record"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const insertComment = `INSERT INTO comments (
	run_id, video_id, comment_id, published_at, updated_at,
	author_display_name, sequence_ordinal, top_level_text, reply_text
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink appends records to the comments table of a SQLite file.
// Each Write is its own committed statement.
type SQLiteSink struct {
	path   string
	runID  string
	db     *sql.DB
	insert *sql.Stmt
	lock   *FileLock
	closed bool
}

// OpenSQLite opens or creates the database at path and ensures the schema.
// Rows written through the sink carry runID.
func OpenSQLite(path, runID string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &SinkError{Op: "open", Path: path, Err: err}
	}

	lock := NewFileLock(path)
	if err := lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		lock.Unlock()
		return nil, &SinkError{Op: "open", Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		lock.Unlock()
		return nil, &SinkError{Op: "header", Path: path, Err: err}
	}

	insert, err := db.Prepare(insertComment)
	if err != nil {
		db.Close()
		lock.Unlock()
		return nil, &SinkError{Op: "open", Path: path, Err: err}
	}

	return &SQLiteSink{
		path:   path,
		runID:  runID,
		db:     db,
		insert: insert,
		lock:   lock,
	}, nil
}

// Write appends one record.
func (s *SQLiteSink) Write(r record.Record) error {
	if s.closed {
		return &SinkError{Op: "write", Path: s.path, Err: ErrClosed}
	}
	_, err := s.insert.Exec(
		s.runID, r.VideoID, r.CommentID, r.PublishedAt, r.UpdatedAt,
		r.AuthorDisplayName, r.SequenceOrdinal, r.TopLevelText, r.ReplyText,
	)
	if err != nil {
		return &SinkError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Close releases the database and its lock. Closing twice is a no-op.
func (s *SQLiteSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := errors.Join(s.insert.Close(), s.db.Close(), s.lock.Unlock())
	if err != nil {
		return &SinkError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
