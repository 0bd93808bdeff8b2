package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "ytcomments",
	Short: "ytcomments exports YouTube comment threads into append-only files.",
	Long: `ytcomments fetches the comment threads of one video or a roster of videos
through the YouTube Data API v3 and appends one row per comment or reply
to a CSV file or SQLite database.

The API key is read from YTCOMMENTS_API_KEY, YOUTUBE_API_KEY, a .env file,
ytcomments.json or the .api_key file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// ExecuteContext runs the root command and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ytcomments:", err)
		return 1
	}
	return 0
}
