package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 6))))
	pageData := buf.Bytes()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manga/list":
			w.Write([]byte(`{"retcode":0,"data":[{"manga_id":"m1","title":"Solo Leveling"}],"meta":{"page":1,"page_size":24,"total_page":1,"total_record":1}}`))
		case "/manga/detail/m1":
			w.Write([]byte(`{"retcode":0,"data":{"manga_id":"m1","title":"Solo Leveling","status":2,"latest_chapter_id":"c2"}}`))
		case "/chapter/m1/list":
			w.Write([]byte(`{"retcode":0,"data":[{"chapter_id":"c2","chapter_number":2},{"chapter_id":"c1","chapter_number":1}],"meta":{"page":1,"page_size":100,"total_page":1,"total_record":2}}`))
		case "/chapter/detail/c2":
			fmt.Fprintf(w, `{"retcode":0,"data":{"chapter_id":"c2","manga_id":"m1","chapter_number":2,"base_url":%q,"chapter":{"path":"/p/","data":["1.png","2.png"]},"prev_chapter_id":"c1"}}`, server.URL+"/img")
		case "/img/p/1.png", "/img/p/2.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pageData)
		default:
			w.Write([]byte(`{"retcode":404,"message":"not found"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestCommands_AgainstFakeAPI(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	server := fakeAPI(t)
	out := t.TempDir()

	require.NoError(t, run(t, "list", "--base-url", server.URL))
	assert.Equal(t, server.URL, cfg.API.BaseURL)

	require.NoError(t, run(t, "search", "solo", "--base-url", server.URL))
	require.NoError(t, run(t, "detail", "m1", "--base-url", server.URL))
	require.NoError(t, run(t, "chapters", "m1", "--base-url", server.URL, "--all", "--filter", "2"))
	require.NoError(t, run(t, "read", "c2", "--base-url", server.URL, "--quality", "low"))
	require.NoError(t, run(t, "export", "c2", "--base-url", server.URL, "-o", out, "--grayscale", "--max-width", "2"))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".epub"))
}

func TestCommands_Failures(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	server := fakeAPI(t)

	err := run(t, "detail", "missing", "--base-url", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manga not found")

	err = run(t, "read", "missing", "--base-url", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter not found")

	err = run(t, "export", "c2", "--base-url", server.URL, "--device", "etch-a-sketch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown device")

	err = run(t, "list", "--config", "does-not-exist.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "Solo Le...", truncateString("Solo Leveling", 10))
}
