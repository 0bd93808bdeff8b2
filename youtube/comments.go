// Package youtube fetches comment threads from the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytcomments/internal/httpclient"
)

// Sentinel errors for comment listing.
var (
	ErrMalformedResponse = errors.New("youtube: malformed response")
	ErrInvalidOptions    = errors.New("youtube: invalid fetch options")
	ErrMissingAPIKey     = errors.New("youtube: api key required")
)

// MaxPageSize is the upper bound the API accepts for maxResults.
const MaxPageSize = 100

// DefaultParts are the resource parts requested when none are configured.
var DefaultParts = []string{"snippet", "replies"}

// Order selects how the API sorts comment threads.
type Order string

const (
	// OrderRelevance sorts by the API's relevance ranking.
	OrderRelevance Order = "relevance"
	// OrderTime sorts newest first.
	OrderTime Order = "time"
)

// ParseOrder converts a flag or config value into an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderRelevance, OrderTime:
		return o, nil
	}
	return "", fmt.Errorf("%w: order %q (use relevance or time)", ErrInvalidOptions, s)
}

// Mode selects how many pages are fetched per video.
type Mode string

const (
	// ModeSingle fetches the first page only.
	ModeSingle Mode = "single"
	// ModeExhaustive follows continuation tokens until the last page.
	ModeExhaustive Mode = "exhaustive"
)

// ParseMode converts a flag or config value into a Mode.
// "once" and "all" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "once":
		return ModeSingle, nil
	case "exhaustive", "all":
		return ModeExhaustive, nil
	}
	return "", fmt.Errorf("%w: mode %q (use single or exhaustive)", ErrInvalidOptions, s)
}

// FetchOptions configures a comment thread listing.
type FetchOptions struct {
	// Parts lists the resource parts to request. Empty means DefaultParts.
	Parts []string

	// PageSize is maxResults per request, 1 to MaxPageSize.
	PageSize int64

	// Order is the sort order. Empty means OrderRelevance.
	Order Order

	// Mode is single or exhaustive. Empty means ModeSingle.
	Mode Mode
}

// DefaultFetchOptions returns the options used when nothing is configured.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Parts:    DefaultParts,
		PageSize: MaxPageSize,
		Order:    OrderRelevance,
		Mode:     ModeSingle,
	}
}

func (o FetchOptions) withDefaults() FetchOptions {
	if len(o.Parts) == 0 {
		o.Parts = DefaultParts
	}
	if o.Order == "" {
		o.Order = OrderRelevance
	}
	if o.Mode == "" {
		o.Mode = ModeSingle
	}
	return o
}

// normalize validates the options and rewrites Order and Mode to their
// canonical values, so aliases and letter case never reach the wire or
// the pagination loop.
func (o FetchOptions) normalize() (FetchOptions, error) {
	if o.PageSize < 1 || o.PageSize > MaxPageSize {
		return o, fmt.Errorf("%w: page size %d not in 1..%d", ErrInvalidOptions, o.PageSize, MaxPageSize)
	}
	order, err := ParseOrder(string(o.Order))
	if err != nil {
		return o, err
	}
	mode, err := ParseMode(string(o.Mode))
	if err != nil {
		return o, err
	}
	o.Order = order
	o.Mode = mode
	return o, nil
}

// Validate checks the options against the API's constraints.
func (o FetchOptions) Validate() error {
	_, err := o.normalize()
	return err
}

// UpstreamError wraps a failed commentThreads.list call.
// Use errors.As() to extract the request context:
//
//	var upErr *youtube.UpstreamError
//	if errors.As(err, &upErr) {
//		fmt.Printf("video %s failed with HTTP %d\n", upErr.VideoID, upErr.StatusCode)
//	}
type UpstreamError struct {
	// VideoID is the video being listed.
	VideoID string
	// PageToken is the continuation token of the failed request, empty for the first page.
	PageToken string
	// StatusCode is the HTTP status, 0 when no response was received or
	// the response body could not be decoded.
	StatusCode int
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the upstream error.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube: list comment threads for %s (status %d): %v", e.VideoID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("youtube: list comment threads for %s: %v", e.VideoID, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *UpstreamError) Unwrap() error { return e.Err }

// ListerConfig configures a CommentLister.
type ListerConfig struct {
	// APIKey is the YouTube Data API key. Required.
	APIKey string

	// Endpoint overrides the API base URL (must end with "/").
	Endpoint string

	// HTTP configures the underlying client. Nil means httpclient.DefaultConfig().
	HTTP *httpclient.Config

	// Logger receives per-page debug logs. Nil disables logging.
	Logger *zap.Logger
}

// CommentLister lists comment threads page by page using YouTube Data API v3.
type CommentLister struct {
	service *youtube.Service
	logger  *zap.Logger

	mu        sync.Mutex
	quotaUsed int
}

// NewCommentLister creates a lister bound to the given API key.
func NewCommentLister(ctx context.Context, cfg ListerConfig) (*CommentLister, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		httpCfg = &c
	}
	httpCfg.APIKey = cfg.APIKey

	opts := []option.ClientOption{option.WithHTTPClient(httpclient.New(httpCfg))}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	service.UserAgent = httpCfg.UserAgent

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CommentLister{
		service: service,
		logger:  logger.Named("youtube"),
	}, nil
}

// Pages returns the comment thread pages of a video as a lazy sequence.
//
// The first request carries no page token. In ModeSingle the sequence ends
// after the first page even when a continuation token was returned. In
// ModeExhaustive it follows tokens until a page arrives without one. Each
// page costs exactly one request, issued only when the consumer asks for
// it. The first error is yielded once and ends the sequence.
func (l *CommentLister) Pages(ctx context.Context, videoID string, opts FetchOptions) iter.Seq2[*Page, error] {
	opts, optsErr := opts.withDefaults().normalize()

	return func(yield func(*Page, error) bool) {
		if strings.TrimSpace(videoID) == "" {
			yield(nil, fmt.Errorf("%w: empty video id", ErrInvalidOptions))
			return
		}
		if optsErr != nil {
			yield(nil, optsErr)
			return
		}

		seen := make(map[string]struct{})
		pageToken := ""
		for {
			page, err := l.fetchPage(ctx, videoID, pageToken, opts)
			if err != nil {
				yield(nil, err)
				return
			}

			if !yield(page, nil) {
				return
			}

			if opts.Mode == ModeSingle || !page.HasNext() {
				return
			}

			// A token seen before would replay pages already emitted.
			if _, dup := seen[page.NextPageToken]; dup {
				yield(nil, &UpstreamError{
					VideoID:   videoID,
					PageToken: page.NextPageToken,
					Err:       fmt.Errorf("%w: repeated page token", ErrMalformedResponse),
				})
				return
			}
			seen[page.NextPageToken] = struct{}{}
			pageToken = page.NextPageToken
		}
	}
}

// fetchPage issues one commentThreads.list request.
func (l *CommentLister) fetchPage(ctx context.Context, videoID, pageToken string, opts FetchOptions) (*Page, error) {
	call := l.service.CommentThreads.List(opts.Parts).
		VideoId(videoID).
		MaxResults(opts.PageSize).
		Order(string(opts.Order)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	l.trackQuotaUsage(1) // commentThreads.list costs 1 unit
	if err != nil {
		return nil, &UpstreamError{
			VideoID:    videoID,
			PageToken:  pageToken,
			StatusCode: statusCode(err),
			Err:        err,
		}
	}

	page, err := newPage(videoID, resp)
	if err != nil {
		return nil, &UpstreamError{
			VideoID:    videoID,
			PageToken:  pageToken,
			StatusCode: resp.HTTPStatusCode,
			Err:        err,
		}
	}

	l.logger.Debug("fetched page",
		zap.String("video_id", videoID),
		zap.Bool("first", pageToken == ""),
		zap.Int("threads", len(page.Items)),
		zap.Bool("has_next", page.HasNext()),
	)

	return page, nil
}

// statusCode extracts the HTTP status from a googleapi error, 0 otherwise.
func statusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func (l *CommentLister) trackQuotaUsage(units int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quotaUsed += units
}

// QuotaUsed returns the estimated quota units consumed so far.
func (l *CommentLister) QuotaUsed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quotaUsed
}
