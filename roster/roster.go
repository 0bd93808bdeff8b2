// Package roster reads the list of videos to export.
//
// A roster is a comma-separated file with one video per row:
//
//	video_id,video_title
//	srXsCRnSgBA,Intro lecture
//	# lines starting with '#' are ignored
//	dQw4w9WgXcQ
//
// The header row and the title column are optional.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ytcomments/config"
)

// Entry is one roster row.
type Entry struct {
	VideoID string
	Title   string
}

// Load reads and parses the roster file at path.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &config.ConfigError{Field: "roster", Err: err}
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse reads roster rows from r. Values are trimmed; blank lines, comment
// lines and a leading video_id header are skipped. A roster without any
// video is a *config.ConfigError wrapping config.ErrEmptyRoster.
func Parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []Entry
	for first := true; ; first = false {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &config.ConfigError{Field: "roster", Err: err}
		}

		id := strings.TrimSpace(row[0])
		if first && strings.EqualFold(id, "video_id") {
			continue
		}
		if id == "" {
			continue
		}

		e := Entry{VideoID: id}
		if len(row) > 1 {
			e.Title = strings.TrimSpace(row[1])
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, &config.ConfigError{Field: "roster", Err: config.ErrEmptyRoster}
	}
	return entries, nil
}

// VideoIDs returns the video ids of entries in roster order.
func VideoIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.VideoID
	}
	return ids
}
