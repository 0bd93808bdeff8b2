package ytcomments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ytcomments/config"
	"ytcomments/export"
	"ytcomments/metrics"
	"ytcomments/sink"
	"ytcomments/youtube"
)

// RunOptions selects what a Run exports and where.
type RunOptions struct {
	// VideoIDs are exported in order. Must not be empty.
	VideoIDs []string

	// OutputPath overrides the timestamped path derived from the config.
	OutputPath string

	// Logger receives progress logs. Nil disables logging.
	Logger *zap.Logger
}

// Result describes a finished or aborted run.
type Result struct {
	RunID      string
	OutputPath string
	Stats      export.Stats
	QuotaUsed  int
}

// Run exports the comments of opts.VideoIDs according to cfg.
//
// The output is opened once for the whole run and closed before Run
// returns. On failure the returned Result still reports what was written.
func Run(ctx context.Context, cfg *config.Config, opts RunOptions) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(opts.VideoIDs) == 0 {
		return nil, &config.ConfigError{Field: "roster", Err: config.ErrEmptyRoster}
	}

	fetch, err := cfg.FetchOptions()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lister, err := youtube.NewCommentLister(ctx, youtube.ListerConfig{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		HTTP:     cfg.HTTPConfig(),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      uuid.NewString(),
		OutputPath: opts.OutputPath,
	}
	if res.OutputPath == "" {
		res.OutputPath = cfg.OutputPath(time.Now())
	}

	out, err := sink.Open(cfg.Format(), res.OutputPath, res.RunID)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	exp := export.New(lister, out, export.Options{
		Fetch:      fetch,
		VideoDelay: cfg.VideoDelay,
		RunID:      res.RunID,
		Logger:     logger,
		Metrics:    m,
	})

	logger.Info("run started",
		zap.String("run_id", res.RunID),
		zap.String("output", res.OutputPath),
		zap.Int("videos", len(opts.VideoIDs)),
		zap.String("mode", string(fetch.Mode)),
	)

	stats, runErr := exp.Run(ctx, opts.VideoIDs)
	closeErr := out.Close()

	res.Stats = stats
	res.QuotaUsed = lister.QuotaUsed()

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	if err := errors.Join(runErr, closeErr); err != nil {
		return res, err
	}
	return res, nil
}
