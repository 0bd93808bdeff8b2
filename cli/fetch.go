package main

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ytcomments"
	"ytcomments/config"
	"ytcomments/internal/logging"
	"ytcomments/roster"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var fetchFlags struct {
	mode        string
	order       string
	maxResults  int64
	out         string
	format      string
	delay       time.Duration
	metricsFile string
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchFlags.mode, "mode", "", "single (first page only) or exhaustive (all pages)")
	f.StringVar(&fetchFlags.order, "order", "", "relevance or time")
	f.Int64Var(&fetchFlags.maxResults, "max-results", 0, "threads per request (1-100)")
	f.StringVar(&fetchFlags.out, "out", "", "output file (default: timestamped file in the output dir)")
	f.StringVar(&fetchFlags.format, "format", "", "output format: csv or sqlite")
	f.DurationVar(&fetchFlags.delay, "delay", 0, "pause between videos, e.g. 5s")
	f.StringVar(&fetchFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <roster-file|video-id>",
	Short: "Export the comments of a video or of every video in a roster file.",
	Example: `  ytcomments fetch srXsCRnSgBA
  ytcomments fetch data/input/inputs.csv --mode exhaustive --order time
  ytcomments fetch inputs.csv --format sqlite --out comments.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Read()
		if err != nil {
			return err
		}
		if err := applyFetchFlags(cmd, cfg); err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()

		ids, err := resolveVideoIDs(args[0])
		if err != nil {
			return err
		}

		res, err := ytcomments.Run(cmd.Context(), cfg, ytcomments.RunOptions{
			VideoIDs:   ids,
			OutputPath: fetchFlags.out,
			Logger:     logger,
		})
		if res != nil {
			logger.Info("run finished",
				zap.String("run_id", res.RunID),
				zap.Int("videos", res.Stats.Videos),
				zap.Int("records", res.Stats.Records),
				zap.Int("quota_units", res.QuotaUsed),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%d records from %d videos written to %s\n",
				res.Stats.Records, res.Stats.Videos, res.OutputPath)
		}
		return err
	},
}

// applyFetchFlags overrides loaded settings with explicitly set flags and
// revalidates the result.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = fetchFlags.mode
	}
	if flags.Changed("order") {
		cfg.Order = fetchFlags.order
	}
	if flags.Changed("max-results") {
		cfg.PageSize = fetchFlags.maxResults
	}
	if flags.Changed("format") {
		cfg.OutputFormat = fetchFlags.format
	}
	if flags.Changed("delay") {
		cfg.VideoDelay = fetchFlags.delay
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = fetchFlags.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg.Validate()
}

// resolveVideoIDs treats arg as a roster file when it exists and as a single
// video id otherwise.
func resolveVideoIDs(arg string) ([]string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		entries, err := roster.Load(arg)
		if err != nil {
			return nil, err
		}
		return roster.VideoIDs(entries), nil
	}
	if videoIDPattern.MatchString(arg) {
		return []string{arg}, nil
	}
	return nil, &config.ConfigError{
		Field: "roster",
		Err:   fmt.Errorf("%q is neither a readable roster file nor a video id", arg),
	}
}
