package sources

import (
	"context"

	"github.com/kerbaras/komik/pkg/data"
)

// ListQuery selects one page of the catalog listing.
type ListQuery struct {
	Page        int
	PageSize    int
	Type        string
	Format      string
	Updated     bool
	Recommended bool
	Sort        string
	SortOrder   data.SortOrder
}

// ChapterQuery selects one page of a manga's chapter list.
type ChapterQuery struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder data.SortOrder
}

type Source interface {
	ListManga(ctx context.Context, q ListQuery) ([]data.Manga, data.Meta, error)
	SearchManga(ctx context.Context, query string, page, pageSize int) ([]data.Manga, data.Meta, error)
	GetManga(ctx context.Context, id string) (*data.MangaDetail, error)
	ListChapters(ctx context.Context, mangaID string, q ChapterQuery) ([]data.ChapterSummary, data.Meta, error)
	GetChapter(ctx context.Context, chapterID string) (*data.ChapterContent, error)
}
