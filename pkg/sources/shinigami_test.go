package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kerbaras/komik/pkg/api"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShinigami(t *testing.T, h http.HandlerFunc) *Shinigami {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewShinigami(api.NewAPI(server.URL))
}

func TestShinigami_ListManga(t *testing.T) {
	s := newShinigami(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga/list", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "project", q.Get("type"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "24", q.Get("page_size"))
		assert.Equal(t, "true", q.Get("is_update"))
		assert.Equal(t, "latest", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("sort_order"))
		assert.Empty(t, q.Get("is_recommended"))

		w.Write([]byte(`{
			"retcode": 0,
			"data": [{
				"manga_id": "m1",
				"title": "Solo Leveling",
				"cover_portrait_url": "https://img/p.jpg",
				"latest_chapter_number": 200,
				"latest_chapter_time": "2024-05-01T10:00:00Z",
				"user_rate": "9.1",
				"view_count": 1500000,
				"bookmark_count": 3200,
				"country_id": "KR",
				"taxonomy": {"Genre": [{"name": "Action"}, {"name": "Fantasy"}]}
			}],
			"meta": {"page": 2, "page_size": 24, "total_page": 3, "total_record": 51}
		}`))
	})

	mangas, meta, err := s.ListManga(context.Background(), ListQuery{
		Page: 2, PageSize: 24, Type: "project", Updated: true, Sort: "latest", SortOrder: data.SortDesc,
	})
	require.NoError(t, err)
	require.Len(t, mangas, 1)

	m := mangas[0]
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, 9.1, m.Rating)
	assert.Equal(t, int64(1500000), m.ViewCount)
	assert.Equal(t, float64(200), m.LatestChapterNumber)
	assert.Equal(t, []string{"Action", "Fantasy"}, m.Genres)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), m.LatestChapterTime)
	assert.Equal(t, 51, meta.TotalRecord)
	assert.Equal(t, 3, meta.TotalPage)
}

func TestShinigami_SearchManga(t *testing.T) {
	s := newShinigami(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "one piece & co", r.URL.Query().Get("q"))
		assert.Contains(t, r.URL.RawQuery, "q=one+piece+%26+co")
		w.Write([]byte(`{"retcode":0,"data":[],"meta":{"total_record":0}}`))
	})

	mangas, _, err := s.SearchManga(context.Background(), "one piece & co", 1, 24)
	require.NoError(t, err)
	assert.Empty(t, mangas)
}

func TestShinigami_GetManga(t *testing.T) {
	s := newShinigami(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga/detail/m1", r.URL.Path)
		w.Write([]byte(`{
			"retcode": 0,
			"data": {
				"manga_id": "m1",
				"title": "Title",
				"alternative_title": "Alt",
				"description": "Desc",
				"status": 2,
				"latest_chapter_id": "c200",
				"taxonomy": {
					"Author": [{"name": "Chugong"}],
					"Artist": [{"name": "Dubu"}],
					"Format": [{"name": "Manhwa"}]
				}
			}
		}`))
	})

	detail, err := s.GetManga(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Alt", detail.AltTitle)
	assert.Equal(t, data.StatusCompleted, detail.Status)
	assert.Equal(t, []string{"Chugong"}, detail.Authors)
	assert.Equal(t, []string{"Dubu"}, detail.Artists)
	assert.Equal(t, []string{"Manhwa"}, detail.Formats)
	assert.Nil(t, detail.Genres, "absent genre list stays empty")
	assert.Equal(t, "c200", detail.LatestChapterID)
}

func TestShinigami_ListChapters(t *testing.T) {
	s := newShinigami(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chapter/m1/list", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "chapter_number", q.Get("sort_by"))
		assert.Equal(t, "asc", q.Get("sort_order"))
		w.Write([]byte(`{"retcode":0,"data":[
			{"chapter_id":"c1","chapter_number":1,"chapter_title":"Start","view_count":10,"release_date":"2024-01-02"},
			{"chapter_id":"c2","chapter_number":1.5,"chapter_title":""}
		],"meta":{"total_page":1,"total_record":2}}`))
	})

	chapters, meta, err := s.ListChapters(context.Background(), "m1", ChapterQuery{
		Page: 1, PageSize: 24, SortBy: "chapter_number", SortOrder: data.SortAsc,
	})
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, 1.5, chapters[1].Number)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), chapters[0].ReleaseDate)
	assert.Equal(t, 2, meta.TotalRecord)
}

func TestShinigami_GetChapter(t *testing.T) {
	s := newShinigami(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chapter/detail/c1", r.URL.Path)
		w.Write([]byte(`{"retcode":0,"data":{
			"chapter_id":"c1","manga_id":"m1","chapter_number":1,"chapter_title":"",
			"thumbnail_image_url":"https://thumb/c1.jpg",
			"base_url":"https://hd","base_url_low":"https://sd",
			"chapter":{"path":"/x/","data":["1.jpg","2.jpg"]},
			"prev_chapter_id":null,"prev_chapter_number":null,
			"next_chapter_id":"c2","next_chapter_number":2,
			"view_count":42
		}}`))
	})

	ch, err := s.GetChapter(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "m1", ch.MangaID)
	assert.Equal(t, "https://thumb/c1.jpg", ch.Thumbnail)
	assert.Equal(t, []string{"1.jpg", "2.jpg"}, ch.Files)
	assert.False(t, ch.HasPrev())
	assert.True(t, ch.HasNext())
	assert.Equal(t, 2.0, *ch.NextNumber)
	assert.Equal(t, "https://sd/x/2.jpg", ch.ImageURL(data.QualityLow, "2.jpg"))
}

func TestShinigami_GetChapterNotFound(t *testing.T) {
	s := newShinigami(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retcode":1,"message":"not found"}`))
	})

	ch, err := s.GetChapter(context.Background(), "missing")
	assert.Nil(t, ch)
	assert.ErrorIs(t, err, api.ErrUnsuccessful)
}
