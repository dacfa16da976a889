package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewAPI(server.URL)
}

func TestGet_EncodesParams(t *testing.T) {
	var got url.Values
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{}`))
	})

	var out map[string]any
	err := client.Get(context.Background(), "/manga/list", url.Values{"q": {"one piece"}, "page": {"2"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "one piece", got.Get("q"))
	assert.Equal(t, "2", got.Get("page"))
}

func TestFetch_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga/detail/abc", r.URL.Path)
		w.Write([]byte(`{"retcode":0,"message":"ok","data":{"id":"abc"}}`))
	})

	got, _, err := Fetch[item](context.Background(), client, EntityMangaDetail, nil, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
}

func TestFetch_ListWithMeta(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retcode":0,"data":[{"id":"a"},{"id":"b"}],"meta":{"page":1,"page_size":2,"total_page":4,"total_record":7}}`))
	})

	got, meta, err := Fetch[[]item](context.Background(), client, EntityMangaList, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 4, meta.TotalPage)
	assert.Equal(t, 7, meta.TotalRecord)
}

func TestFetch_NullListIsEmpty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retcode":0,"data":null,"meta":{"total_record":0}}`))
	})

	got, _, err := Fetch[[]item](context.Background(), client, EntityChapterList, nil, "m1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetch_ErrorTaxonomy(t *testing.T) {
	t.Run("non-zero retcode", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"retcode":404,"message":"chapter not found"}`))
		})
		_, _, err := Fetch[item](context.Background(), client, EntityChapterDetail, nil, "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsuccessful)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 404, apiErr.Code)
		assert.Contains(t, err.Error(), "chapter not found")
	})

	t.Run("missing object payload", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"retcode":0}`))
		})
		_, _, err := Fetch[item](context.Background(), client, EntityMangaDetail, nil, "x")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("garbage body", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		})
		_, _, err := Fetch[item](context.Background(), client, EntityMangaDetail, nil, "x")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("http status", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, _, err := Fetch[item](context.Background(), client, EntityMangaDetail, nil, "x")
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewAPI("http://127.0.0.1:1")
		_, _, err := Fetch[item](context.Background(), client, EntityMangaDetail, nil, "x")
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestFetch_CancelledContext(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retcode":0,"data":{"id":"a"}}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Fetch[item](ctx, client, EntityMangaDetail, nil, "a")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPath(t *testing.T) {
	p, err := Path(EntityChapterList, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/chapter/a%2Fb/list", p)

	_, err = Path(EntityMangaDetail, "")
	assert.Error(t, err)

	_, err = Path(Entity("nope"))
	assert.Error(t, err)
}

func TestWithRateLimit(t *testing.T) {
	c := NewAPI("", WithRateLimit(5, 0))
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = NewAPI("", WithRateLimit(0, 3))
	assert.Nil(t, c.limiter)
}
