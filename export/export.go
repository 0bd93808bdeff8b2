// Package export drives comment export runs: it pulls pages from a
// PageSource, flattens each page into records and appends them to a Sink.
//
// Records of a page are written before the next page is requested, so a
// failed run leaves every record of the pages fetched so far in the sink.
package export

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ytcomments/metrics"
	"ytcomments/record"
	"ytcomments/sink"
	"ytcomments/youtube"
)

// PageSource yields the comment thread pages of a video.
// *youtube.CommentLister implements it.
type PageSource interface {
	Pages(ctx context.Context, videoID string, opts youtube.FetchOptions) iter.Seq2[*youtube.Page, error]
}

// quotaReporter is implemented by sources that estimate API quota usage.
type quotaReporter interface {
	QuotaUsed() int
}

// Options configures an Exporter.
type Options struct {
	// Fetch is passed to the source for every video.
	Fetch youtube.FetchOptions

	// VideoDelay is the minimum spacing between the start of two videos.
	// Zero disables waiting.
	VideoDelay time.Duration

	// RunID tags logs and sink rows. Empty generates a random UUID.
	RunID string

	// Logger receives progress logs. Nil disables logging.
	Logger *zap.Logger

	// Metrics receives run counters. Nil allocates a private set.
	Metrics *metrics.Metrics
}

// Stats summarizes what an export wrote.
type Stats struct {
	Videos  int
	Pages   int
	Threads int
	Records int
}

func (s *Stats) add(o Stats) {
	s.Videos += o.Videos
	s.Pages += o.Pages
	s.Threads += o.Threads
	s.Records += o.Records
}

// Exporter copies comments of one or more videos into a sink.
// It is not safe for concurrent use.
type Exporter struct {
	source  PageSource
	sink    sink.Sink
	opts    Options
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates an exporter writing pages from source into s.
func New(source PageSource, s sink.Sink, opts Options) *Exporter {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	limit := rate.Inf
	if opts.VideoDelay > 0 {
		limit = rate.Every(opts.VideoDelay)
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Exporter{
		source:  source,
		sink:    s,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		metrics: m,
		logger:  logger.Named("export").With(zap.String("run_id", opts.RunID)),
	}
}

// RunID returns the identifier attached to this exporter's logs.
func (e *Exporter) RunID() string {
	return e.opts.RunID
}

// Metrics returns the counters updated by this exporter.
func (e *Exporter) Metrics() *metrics.Metrics {
	return e.metrics
}

// Run exports videoIDs in order, waiting VideoDelay between videos.
// The first error aborts the run; the returned Stats cover everything
// written up to that point.
func (e *Exporter) Run(ctx context.Context, videoIDs []string) (Stats, error) {
	var total Stats
	start := time.Now()

	for i, videoID := range videoIDs {
		if err := e.limiter.Wait(ctx); err != nil {
			e.countError(err)
			return total, err
		}

		stats, err := e.ExportVideo(ctx, videoID)
		total.add(stats)
		if err != nil {
			e.logger.Error("run aborted",
				zap.String("video_id", videoID),
				zap.Int("video_index", i),
				zap.Int("records", total.Records),
				zap.Error(err),
			)
			return total, err
		}
	}

	e.logger.Info("run complete",
		zap.Int("videos", total.Videos),
		zap.Int("pages", total.Pages),
		zap.Int("records", total.Records),
		zap.Duration("elapsed", time.Since(start)),
	)
	return total, nil
}

// ExportVideo writes every record of the video's pages to the sink.
// Each page is flattened and written before the next one is requested.
func (e *Exporter) ExportVideo(ctx context.Context, videoID string) (Stats, error) {
	var stats Stats
	log := e.logger.With(zap.String("video_id", videoID))

	for page, err := range e.source.Pages(ctx, videoID, e.opts.Fetch) {
		e.updateQuota()
		if err != nil {
			e.countError(err)
			return stats, err
		}

		stats.Pages++
		stats.Threads += len(page.Items)
		e.metrics.PagesFetched.Inc()

		for _, r := range record.Flatten(page) {
			if err := e.sink.Write(r); err != nil {
				e.countError(err)
				return stats, err
			}
			stats.Records++
			e.metrics.RecordsWritten.WithLabelValues(kindOf(r)).Inc()
		}

		log.Debug("page written",
			zap.Int("page", stats.Pages),
			zap.Int("threads", len(page.Items)),
			zap.Int("records", stats.Records),
		)
	}

	stats.Videos = 1
	e.metrics.VideosExported.Inc()
	log.Info("video exported",
		zap.Int("pages", stats.Pages),
		zap.Int("threads", stats.Threads),
		zap.Int("records", stats.Records),
	)
	return stats, nil
}

func (e *Exporter) updateQuota() {
	if q, ok := e.source.(quotaReporter); ok {
		e.metrics.QuotaUnits.Set(float64(q.QuotaUsed()))
	}
}

func (e *Exporter) countError(err error) {
	e.metrics.Errors.WithLabelValues(errorKind(err)).Inc()
}

func kindOf(r record.Record) string {
	if r.IsReply() {
		return metrics.KindReply
	}
	return metrics.KindTopLevel
}

// errorKind buckets an error for the errors counter.
func errorKind(err error) string {
	var upErr *youtube.UpstreamError
	var sinkErr *sink.SinkError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, youtube.ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &upErr):
		return "upstream"
	case errors.As(err, &sinkErr):
		return "sink"
	case errors.Is(err, youtube.ErrInvalidOptions):
		return "options"
	}
	return "other"
}
