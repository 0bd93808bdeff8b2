// Package ytcomments exports YouTube comment threads into append-only
// tabular files.
//
// Overview
//
// For every video of a roster, the comment threads returned by the YouTube
// Data API v3 commentThreads.list endpoint are flattened into one record per
// comment: a top-level record followed by one record per reply, in the order
// the API returned them. Records are appended to a CSV file (or a SQLite
// database) as soon as their page arrives.
//
// Quick Start
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := ytcomments.Run(ctx, cfg, ytcomments.RunOptions{
//		VideoIDs: []string{"srXsCRnSgBA"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d records written to %s\n", res.Stats.Records, res.OutputPath)
//
// Configuration
//
// Settings are loaded from several sources:
//
//   1. Environment variables (highest priority)
//   2. A .env file in the working directory
//   3. Config file (ytcomments.json or ~/.config/ytcomments/ytcomments.json)
//   4. Default values (lowest priority)
//
// The API key is read from YTCOMMENTS_API_KEY or YOUTUBE_API_KEY, the
// api_key config field, or finally the .api_key file.
//
// Environment variables:
//
//   - YTCOMMENTS_API_KEY: YouTube Data API key
//   - YTCOMMENTS_OUTPUT_DIR: Directory of timestamped output files
//   - YTCOMMENTS_OUTPUT_FORMAT: csv or sqlite
//   - YTCOMMENTS_MODE: single (first page) or exhaustive (all pages)
//   - YTCOMMENTS_ORDER: relevance or time
//   - YTCOMMENTS_PAGE_SIZE: Threads per request (1-100)
//   - YTCOMMENTS_VIDEO_DELAY: Pause between videos, e.g. 5s
//   - YTCOMMENTS_REQUEST_TIMEOUT: Timeout of each API call
//   - YTCOMMENTS_LOG_LEVEL: debug, info, warn or error
//   - YTCOMMENTS_METRICS_FILE: Prometheus textfile written after a run
//
// Error Handling
//
// Failures are never retried. The first error aborts a run and every record
// written before it stays in the output.
//
//	var upErr *ytcomments.UpstreamError
//	if errors.As(err, &upErr) {
//		fmt.Printf("video %s: HTTP %d\n", upErr.VideoID, upErr.StatusCode)
//	}
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - youtube: Paginated commentThreads listing
//   - record: Flattening of pages into records
//   - sink: CSV and SQLite outputs
//   - export: Page-by-page export driver
//   - roster: Input video lists
//   - config: Configuration management
package ytcomments
