package youtube

import (
	"fmt"

	"google.golang.org/api/youtube/v3"
)

// Comment is a single YouTube comment, either top-level or a reply.
type Comment struct {
	// ID is the YouTube comment ID. Reply IDs are "<parent>.<suffix>".
	ID string `json:"id"`

	// AuthorDisplayName is the commenter's display name.
	AuthorDisplayName string `json:"author_display_name"`

	// PublishedAt is the RFC3339 timestamp as returned by the API.
	PublishedAt string `json:"published_at"`

	// UpdatedAt is the RFC3339 timestamp of the last edit.
	UpdatedAt string `json:"updated_at"`

	// TextDisplay is the comment body as displayed (may contain HTML).
	TextDisplay string `json:"text_display"`

	// ParentID is set on replies only.
	ParentID string `json:"parent_id,omitempty"`
}

// IsReply reports whether the comment answers another comment.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// CommentThread is a top-level comment plus its ordered replies.
type CommentThread struct {
	ID              string    `json:"id"`
	VideoID         string    `json:"video_id"`
	TopLevelComment Comment   `json:"top_level_comment"`
	Replies         []Comment `json:"replies,omitempty"`
}

// Page is one commentThreads.list response.
type Page struct {
	// VideoID is the video the page was requested for.
	VideoID string `json:"video_id"`

	// Items holds the threads in response order.
	Items []CommentThread `json:"items"`

	// NextPageToken is empty when no further page exists.
	NextPageToken string `json:"next_page_token,omitempty"`
}

// HasNext reports whether the upstream returned a continuation token.
func (p *Page) HasNext() bool {
	return p.NextPageToken != ""
}

// newPage converts an API response into a Page. A response without an
// items array, or a thread without a top-level comment snippet, is
// rejected as a whole.
func newPage(videoID string, resp *youtube.CommentThreadListResponse) (*Page, error) {
	if resp == nil || resp.Items == nil {
		return nil, fmt.Errorf("%w: missing items", ErrMalformedResponse)
	}

	page := &Page{
		VideoID:       videoID,
		Items:         make([]CommentThread, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}

	for i, item := range resp.Items {
		thread, err := newCommentThread(item)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedResponse, i, err)
		}
		page.Items = append(page.Items, thread)
	}

	return page, nil
}

func newCommentThread(item *youtube.CommentThread) (CommentThread, error) {
	if item == nil || item.Snippet == nil {
		return CommentThread{}, fmt.Errorf("thread has no snippet")
	}
	top, err := newComment(item.Snippet.TopLevelComment)
	if err != nil {
		return CommentThread{}, fmt.Errorf("thread %s top-level comment: %v", item.Id, err)
	}

	thread := CommentThread{
		ID:              item.Id,
		VideoID:         item.Snippet.VideoId,
		TopLevelComment: top,
	}

	// An absent replies object and an empty comments list mean the same thing.
	if item.Replies == nil {
		return thread, nil
	}
	for _, c := range item.Replies.Comments {
		reply, err := newComment(c)
		if err != nil {
			return CommentThread{}, fmt.Errorf("thread %s reply: %v", item.Id, err)
		}
		thread.Replies = append(thread.Replies, reply)
	}

	return thread, nil
}

func newComment(c *youtube.Comment) (Comment, error) {
	if c == nil || c.Snippet == nil {
		return Comment{}, fmt.Errorf("comment has no snippet")
	}
	return Comment{
		ID:                c.Id,
		AuthorDisplayName: c.Snippet.AuthorDisplayName,
		PublishedAt:       c.Snippet.PublishedAt,
		UpdatedAt:         c.Snippet.UpdatedAt,
		TextDisplay:       c.Snippet.TextDisplay,
		ParentID:          c.Snippet.ParentId,
	}, nil
}
