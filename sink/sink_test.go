package sink

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytcomments/record"
)

func sampleRecord(i int) record.Record {
	return record.Record{
		VideoID:           "vid",
		CommentID:         fmt.Sprintf("c%d", i),
		PublishedAt:       "2016-07-02T16:00:19.000Z",
		UpdatedAt:         "2016-07-02T16:00:19.000Z",
		AuthorDisplayName: "author",
		SequenceOrdinal:   fmt.Sprint(i),
		TopLevelText:      fmt.Sprintf("comment %d", i),
		ReplyText:         record.Placeholder,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestOpenCSVWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "comments.csv")

	s, err := OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(sampleRecord(1)))
	require.NoError(t, s.Close())

	// Reopening appends without repeating the header.
	s, err = OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(sampleRecord(2)))
	require.NoError(t, s.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, record.Header, rows[0])
	assert.Equal(t, "c1", rows[1][1])
	assert.Equal(t, "c2", rows[2][1])
}

func TestOpenCSVHeaderOnlyWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.csv")

	s, err := OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, record.Header, rows[0])
}

func TestCSVSinkQuoting(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSVSink(&buf, false)
	require.NoError(t, err)

	r := sampleRecord(1)
	r.TopLevelText = `she said "hi", then left`
	r.AuthorDisplayName = "plain"
	require.NoError(t, s.Write(r))

	line := buf.String()
	assert.Contains(t, line, `"she said ""hi"", then left"`)
	assert.Contains(t, line, ",plain,", "fields without delimiter or quote stay unquoted")

	rows, err := csv.NewReader(strings.NewReader(line)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, r.Fields(), rows[0])
}

// failingWriter fails every Write call after the first okCalls calls.
type failingWriter struct {
	buf     bytes.Buffer
	okCalls int
	calls   int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls > w.okCalls {
		return 0, errors.New("no space left on device")
	}
	return w.buf.Write(p)
}

func TestCSVSinkWriteFailureKeepsPriorRows(t *testing.T) {
	// One call for the header, then one per flushed record: the 5th record fails.
	w := &failingWriter{okCalls: 5}
	s, err := NewCSVSink(w, true)
	require.NoError(t, err)

	var writeErr error
	written := 0
	for i := 1; i <= 10; i++ {
		if writeErr = s.Write(sampleRecord(i)); writeErr != nil {
			break
		}
		written++
	}

	require.Error(t, writeErr)
	var sinkErr *SinkError
	require.True(t, errors.As(writeErr, &sinkErr))
	assert.Equal(t, "write", sinkErr.Op)
	assert.Equal(t, 4, written)

	rows, err := csv.NewReader(&w.buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, record.Header, rows[0])
	assert.Equal(t, "c4", rows[4][1])
}

func TestCSVSinkHeaderFailure(t *testing.T) {
	_, err := NewCSVSink(&failingWriter{}, true)
	var sinkErr *SinkError
	require.True(t, errors.As(err, &sinkErr))
	assert.Equal(t, "header", sinkErr.Op)
}

func TestCSVSinkWriteAfterClose(t *testing.T) {
	s, err := OpenCSV(filepath.Join(t.TempDir(), "c.csv"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Write(sampleRecord(1)), ErrClosed)
}

func TestOpenCSVLockedByOtherRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.csv")

	first, err := OpenCSV(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenCSV(path)
	assert.ErrorIs(t, err, ErrLockHeld)
}

func TestOpenCSVUnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenCSV(filepath.Join(blocker, "c.csv"))
	var sinkErr *SinkError
	require.True(t, errors.As(err, &sinkErr))
	assert.Equal(t, "open", sinkErr.Op)
}

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.db")

	s, err := OpenSQLite(path, "run-1")
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Write(sampleRecord(i)))
	}
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, "run-2")
	require.NoError(t, err)
	require.NoError(t, s.Write(sampleRecord(4)))
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT run_id, comment_id, top_level_text FROM comments ORDER BY seq`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var runID, commentID, text string
		require.NoError(t, rows.Scan(&runID, &commentID, &text))
		got = append(got, runID+"/"+commentID)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"run-1/c1", "run-1/c2", "run-1/c3", "run-2/c4"}, got)

	assert.ErrorIs(t, s.Write(sampleRecord(5)), ErrClosed)
}

func TestOpenDispatch(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(FormatCSV, filepath.Join(dir, "a.csv"), "run")
	require.NoError(t, err)
	assert.IsType(t, &CSVSink{}, s)
	require.NoError(t, s.Close())

	s, err = Open(FormatSQLite, filepath.Join(dir, "a.db"), "run")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSink{}, s)
	require.NoError(t, s.Close())

	_, err = Open("parquet", filepath.Join(dir, "a.parquet"), "run")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" SQLite ", FormatSQLite, false},
		{"json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.Extension())
		})
	}
}
