// Package record flattens comment thread pages into tabular rows.
package record

import (
	"strconv"

	"ytcomments/youtube"
)

// Placeholder fills the columns that do not apply to a row.
const Placeholder = "-"

// Header is the column order of every sink.
var Header = []string{
	"videoId",
	"commentId",
	"publishedAt",
	"updatedAt",
	"authorDisplayName",
	"sequenceOrdinal",
	"topLevelText",
	"replyText",
}

// Record is one output row: a top-level comment or a reply.
type Record struct {
	VideoID           string
	CommentID         string
	PublishedAt       string
	UpdatedAt         string
	AuthorDisplayName string

	// SequenceOrdinal is the 1-based thread position within its page,
	// or Placeholder on reply rows.
	SequenceOrdinal string

	TopLevelText string
	ReplyText    string
}

// IsReply reports whether the row holds a reply.
func (r Record) IsReply() bool {
	return r.SequenceOrdinal == Placeholder
}

// Fields returns the values in Header order.
func (r Record) Fields() []string {
	return []string{
		r.VideoID,
		r.CommentID,
		r.PublishedAt,
		r.UpdatedAt,
		r.AuthorDisplayName,
		r.SequenceOrdinal,
		r.TopLevelText,
		r.ReplyText,
	}
}

// Flatten returns one record per top-level comment followed by one per
// reply, threads in page order and replies in source order. A page with
// threads t yields sum(1 + len(t.Replies)) records. Flatten has no side
// effects; calling it twice on the same page gives equal results.
func Flatten(page *youtube.Page) []Record {
	if page == nil {
		return nil
	}

	n := 0
	for _, t := range page.Items {
		n += 1 + len(t.Replies)
	}
	out := make([]Record, 0, n)

	for i, t := range page.Items {
		videoID := t.VideoID
		if videoID == "" {
			videoID = page.VideoID
		}

		top := t.TopLevelComment
		out = append(out, Record{
			VideoID:           videoID,
			CommentID:         top.ID,
			PublishedAt:       top.PublishedAt,
			UpdatedAt:         top.UpdatedAt,
			AuthorDisplayName: top.AuthorDisplayName,
			SequenceOrdinal:   strconv.Itoa(i + 1),
			TopLevelText:      top.TextDisplay,
			ReplyText:         Placeholder,
		})

		for _, reply := range t.Replies {
			out = append(out, Record{
				VideoID:           videoID,
				CommentID:         reply.ID,
				PublishedAt:       reply.PublishedAt,
				UpdatedAt:         reply.UpdatedAt,
				AuthorDisplayName: reply.AuthorDisplayName,
				SequenceOrdinal:   Placeholder,
				TopLevelText:      Placeholder,
				ReplyText:         reply.TextDisplay,
			})
		}
	}

	return out
}
