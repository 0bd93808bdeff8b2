package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientNilConfig(t *testing.T) {
	client := New(nil)
	require.NotNil(t, client)
	assert.Equal(t, 30*time.Second, client.Timeout)
}

func TestClientAddsKeyAndUserAgent(t *testing.T) {
	var gotKey, gotVideo, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotVideo = r.URL.Query().Get("videoId")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "secret-key"
	client := New(cfg)

	resp, err := client.Get(server.URL + "/youtube/v3/commentThreads?videoId=abc")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "abc", gotVideo)
	assert.Equal(t, "ytcomments/1.0", gotUA)
}

func TestClientKeepsExplicitUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := New(DefaultConfig())

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/2.0")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom/2.0", gotUA)
}

func TestClientWithoutKeyLeavesQueryAlone(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
	}))
	defer server.Close()

	client := New(DefaultConfig())
	resp, err := client.Get(server.URL + "/?a=1")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "a=1", rawQuery)
}
