package roster

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytcomments/config"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Entry
	}{
		{
			name:  "ids with titles",
			input: "srXsCRnSgBA,Intro lecture\ndQw4w9WgXcQ,Second\n",
			want: []Entry{
				{VideoID: "srXsCRnSgBA", Title: "Intro lecture"},
				{VideoID: "dQw4w9WgXcQ", Title: "Second"},
			},
		},
		{
			name:  "header skipped",
			input: "video_id,video_title\nabc,First\n",
			want:  []Entry{{VideoID: "abc", Title: "First"}},
		},
		{
			name:  "id only",
			input: "abc\ndef\n",
			want:  []Entry{{VideoID: "abc"}, {VideoID: "def"}},
		},
		{
			name:  "blank lines and comments",
			input: "# roster for week 1\n\nabc, First \n\n# done\n",
			want:  []Entry{{VideoID: "abc", Title: "First"}},
		},
		{
			name:  "quoted title with comma",
			input: "abc,\"Lecture 1, part 2\"\n",
			want:  []Entry{{VideoID: "abc", Title: "Lecture 1, part 2"}},
		},
		{
			name:  "whitespace trimmed",
			input: "  abc  ,  title  \n",
			want:  []Entry{{VideoID: "abc", Title: "title"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "\n\n", "# nothing\n", "video_id,video_title\n"} {
		_, err := Parse(strings.NewReader(input))
		assert.ErrorIs(t, err, config.ErrEmptyRoster, "input %q", input)

		var cfgErr *config.ConfigError
		assert.True(t, errors.As(err, &cfgErr))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.csv")
	require.NoError(t, os.WriteFile(path, []byte("video_id,video_title\nabc,First\ndef,Second\n"), 0644))

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def"}, VideoIDs(entries))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
