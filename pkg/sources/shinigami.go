package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kerbaras/komik/pkg/api"
	"github.com/kerbaras/komik/pkg/data"
)

type taxon struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type taxonomy struct {
	Genre  []taxon `json:"Genre"`
	Author []taxon `json:"Author"`
	Artist []taxon `json:"Artist"`
	Format []taxon `json:"Format"`
}

// number decodes a JSON number that may arrive quoted.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", b, err)
	}
	*n = number(f)
	return nil
}

// timestamp decodes the API's date strings, leaving unparseable ones zero.
type timestamp time.Time

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*t = timestamp{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	*t = timestamp{}
	return nil
}

type Manga struct {
	ID                  string    `json:"manga_id"`
	Title               string    `json:"title"`
	CoverPortraitURL    string    `json:"cover_portrait_url"`
	CoverImageURL       string    `json:"cover_image_url"`
	LatestChapterNumber number    `json:"latest_chapter_number"`
	LatestChapterTime   timestamp `json:"latest_chapter_time"`
	UserRate            number    `json:"user_rate"`
	ViewCount           number    `json:"view_count"`
	BookmarkCount       number    `json:"bookmark_count"`
	CountryID           string    `json:"country_id"`
	Rank                number    `json:"rank"`
	Taxonomy            taxonomy  `json:"taxonomy"`

	// detail-only fields
	AlternativeTitle string      `json:"alternative_title"`
	Description      string      `json:"description"`
	Status           data.Status `json:"status"`
	ReleaseYear      string      `json:"release_year"`
	LatestChapterID  string      `json:"latest_chapter_id"`
}

func names(ts []taxon) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		if t.Name != "" {
			out = append(out, t.Name)
		}
	}
	return out
}

func (m *Manga) ToManga() data.Manga {
	return data.Manga{
		ID:                  m.ID,
		Title:               m.Title,
		CoverURL:            m.CoverPortraitURL,
		CoverWideURL:        m.CoverImageURL,
		Rating:              float64(m.UserRate),
		ViewCount:           int64(m.ViewCount),
		BookmarkCount:       int64(m.BookmarkCount),
		LatestChapterNumber: float64(m.LatestChapterNumber),
		LatestChapterTime:   time.Time(m.LatestChapterTime),
		CountryID:           m.CountryID,
		Rank:                int(m.Rank),
		Genres:              names(m.Taxonomy.Genre),
	}
}

func (m *Manga) ToDetail() *data.MangaDetail {
	return &data.MangaDetail{
		Manga:           m.ToManga(),
		AltTitle:        m.AlternativeTitle,
		Description:     m.Description,
		Status:          m.Status,
		ReleaseYear:     m.ReleaseYear,
		Authors:         names(m.Taxonomy.Author),
		Artists:         names(m.Taxonomy.Artist),
		Formats:         names(m.Taxonomy.Format),
		LatestChapterID: m.LatestChapterID,
	}
}

type Chapter struct {
	ID           string    `json:"chapter_id"`
	MangaID      string    `json:"manga_id"`
	Number       number    `json:"chapter_number"`
	Title        string    `json:"chapter_title"`
	ThumbnailURL string    `json:"thumbnail_image_url"`
	ViewCount    number    `json:"view_count"`
	ReleaseDate  timestamp `json:"release_date"`

	// detail-only fields
	BaseURL    string `json:"base_url"`
	BaseURLLow string `json:"base_url_low"`
	Chapter    struct {
		Path string   `json:"path"`
		Data []string `json:"data"`
	} `json:"chapter"`
	PrevChapterID     *string  `json:"prev_chapter_id"`
	PrevChapterNumber *float64 `json:"prev_chapter_number"`
	NextChapterID     *string  `json:"next_chapter_id"`
	NextChapterNumber *float64 `json:"next_chapter_number"`
}

func (c *Chapter) ToSummary() data.ChapterSummary {
	return data.ChapterSummary{
		ID:           c.ID,
		Number:       float64(c.Number),
		Title:        c.Title,
		ThumbnailURL: c.ThumbnailURL,
		ViewCount:    int64(c.ViewCount),
		ReleaseDate:  time.Time(c.ReleaseDate),
	}
}

func (c *Chapter) ToContent() *data.ChapterContent {
	return &data.ChapterContent{
		ID:          c.ID,
		MangaID:     c.MangaID,
		Number:      float64(c.Number),
		Title:       c.Title,
		Thumbnail:   c.ThumbnailURL,
		BaseURL:     c.BaseURL,
		BaseURLLow:  c.BaseURLLow,
		Path:        c.Chapter.Path,
		Files:       c.Chapter.Data,
		PrevID:      c.PrevChapterID,
		PrevNumber:  c.PrevChapterNumber,
		NextID:      c.NextChapterID,
		NextNumber:  c.NextChapterNumber,
		ViewCount:   int64(c.ViewCount),
		ReleaseDate: time.Time(c.ReleaseDate),
	}
}

func toMeta(m api.Meta) data.Meta {
	return data.Meta{
		Page:        m.Page,
		PageSize:    m.PageSize,
		TotalPage:   m.TotalPage,
		TotalRecord: m.TotalRecord,
	}
}

// Shinigami reads from the retcode-envelope API at api.shngm.io.
type Shinigami struct {
	api *api.Client
}

func NewShinigami(client *api.Client) *Shinigami {
	if client == nil {
		client = api.NewAPI(api.DefaultBaseURL)
	}
	return &Shinigami{api: client}
}

func (s *Shinigami) listMangas(ctx context.Context, params url.Values) ([]data.Manga, data.Meta, error) {
	mangas, meta, err := api.Fetch[[]Manga](ctx, s.api, api.EntityMangaList, params)
	if err != nil {
		return nil, data.Meta{}, err
	}
	out := make([]data.Manga, len(mangas))
	for i := range mangas {
		out[i] = mangas[i].ToManga()
	}
	return out, toMeta(meta), nil
}

func (s *Shinigami) ListManga(ctx context.Context, q ListQuery) ([]data.Manga, data.Meta, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Format != "" {
		params.Set("format", q.Format)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	if q.Updated {
		params.Set("is_update", "true")
	}
	if q.Recommended {
		params.Set("is_recommended", "true")
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", string(q.SortOrder))
	}
	return s.listMangas(ctx, params)
}

func (s *Shinigami) SearchManga(ctx context.Context, query string, page, pageSize int) ([]data.Manga, data.Meta, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("q", query)
	return s.listMangas(ctx, params)
}

func (s *Shinigami) GetManga(ctx context.Context, id string) (*data.MangaDetail, error) {
	manga, _, err := api.Fetch[Manga](ctx, s.api, api.EntityMangaDetail, nil, id)
	if err != nil {
		return nil, err
	}
	return manga.ToDetail(), nil
}

func (s *Shinigami) ListChapters(ctx context.Context, mangaID string, q ChapterQuery) ([]data.ChapterSummary, data.Meta, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", string(q.SortOrder))
	}

	chapters, meta, err := api.Fetch[[]Chapter](ctx, s.api, api.EntityChapterList, params, mangaID)
	if err != nil {
		return nil, data.Meta{}, err
	}
	out := make([]data.ChapterSummary, len(chapters))
	for i := range chapters {
		out[i] = chapters[i].ToSummary()
	}
	return out, toMeta(meta), nil
}

func (s *Shinigami) GetChapter(ctx context.Context, chapterID string) (*data.ChapterContent, error) {
	chapter, _, err := api.Fetch[Chapter](ctx, s.api, api.EntityChapterDetail, nil, chapterID)
	if err != nil {
		return nil, err
	}
	return chapter.ToContent(), nil
}
