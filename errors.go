package ytcomments

import (
	"ytcomments/config"
	"ytcomments/sink"
	"ytcomments/youtube"
)

// Error handling types exported for library users.
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytcomments.ErrMissingCredential) {
//		fmt.Println("set YTCOMMENTS_API_KEY")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var sinkErr *ytcomments.SinkError
//	if errors.As(err, &sinkErr) {
//		fmt.Printf("%s %s failed: %v\n", sinkErr.Op, sinkErr.Path, sinkErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// UpstreamError wraps a failed or malformed commentThreads.list call.
	UpstreamError = youtube.UpstreamError
	// SinkError wraps a failed output operation.
	SinkError = sink.SinkError
	// ConfigError reports an invalid or missing setting.
	ConfigError = config.ConfigError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrMalformedResponse indicates a page without items or with an incomplete thread.
	ErrMalformedResponse = youtube.ErrMalformedResponse
	// ErrInvalidOptions indicates fetch options outside the API's limits.
	ErrInvalidOptions = youtube.ErrInvalidOptions
	// ErrMissingCredential indicates no API key was configured.
	ErrMissingCredential = config.ErrMissingCredential
	// ErrEmptyRoster indicates the roster has no videos.
	ErrEmptyRoster = config.ErrEmptyRoster
	// ErrLockHeld indicates another run is writing the same output.
	ErrLockHeld = sink.ErrLockHeld
)
