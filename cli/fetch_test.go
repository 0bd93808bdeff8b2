package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytcomments/config"
)

func TestResolveVideoIDs(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "inputs.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte("video_id,video_title\nsrXsCRnSgBA,Intro\ndQw4w9WgXcQ,Other\n"), 0644))
	emptyPath := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0644))

	tests := []struct {
		name    string
		arg     string
		want    []string
		wantErr error
	}{
		{name: "roster file", arg: rosterPath, want: []string{"srXsCRnSgBA", "dQw4w9WgXcQ"}},
		{name: "video id", arg: "srXsCRnSgBA", want: []string{"srXsCRnSgBA"}},
		{name: "empty roster", arg: emptyPath, wantErr: config.ErrEmptyRoster},
		{name: "missing file", arg: filepath.Join(dir, "nope.csv")},
		{name: "directory", arg: dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveVideoIDs(tt.arg)
			if tt.want == nil {
				require.Error(t, err)
				var cfgErr *config.ConfigError
				assert.True(t, errors.As(err, &cfgErr))
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "time", r.URL.Query().Get("order"))
		assert.Equal(t, "25", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"id": "t1", "snippet": {"videoId": "srXsCRnSgBA",
			"topLevelComment": {"id": "t1", "snippet": {"authorDisplayName": "a", "textDisplay": "hello",
			"publishedAt": "2016-07-02T16:00:19.000Z", "updatedAt": "2016-07-02T16:00:19.000Z"}}}}]}`))
	}))
	defer server.Close()

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("YTCOMMENTS_API_KEY", "test-key")
	t.Setenv("YTCOMMENTS_ENDPOINT", server.URL+"/")

	out := filepath.Join(t.TempDir(), "comments.csv")
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"fetch", "--order", "time", "--max-results", "25", "--out", out, "--log-level", "error", "srXsCRnSgBA"})

	require.Equal(t, 0, ExecuteContext(context.Background()))
	assert.Contains(t, stdout.String(), "1 records from 1 videos written to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "srXsCRnSgBA,t1,")
}

func TestFetchFlagsOverrideInvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("YTCOMMENTS_API_KEY", "test-key")
	t.Setenv("YTCOMMENTS_MODE", "forever")
	t.Setenv("YTCOMMENTS_ORDER", "rating")

	cfg, err := config.Read()
	require.NoError(t, err)

	require.NoError(t, fetchCmd.Flags().Set("mode", "single"))
	require.NoError(t, fetchCmd.Flags().Set("order", "time"))
	t.Cleanup(func() {
		fetchCmd.Flags().Lookup("mode").Changed = false
		fetchCmd.Flags().Lookup("order").Changed = false
		fetchFlags.mode, fetchFlags.order = "", ""
	})

	require.NoError(t, applyFetchFlags(fetchCmd, cfg))
	assert.Equal(t, "single", cfg.Mode)
	assert.Equal(t, "time", cfg.Order)
}

func TestFetchInvalidEnvWithoutFlagFails(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("YTCOMMENTS_API_KEY", "test-key")
	t.Setenv("YTCOMMENTS_MODE", "forever")

	cfg, err := config.Read()
	require.NoError(t, err)

	var cfgErr *config.ConfigError
	require.True(t, errors.As(applyFetchFlags(fetchCmd, cfg), &cfgErr))
	assert.Equal(t, "mode", cfgErr.Field)
}
