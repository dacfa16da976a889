package services

import (
	"context"
	"testing"

	"github.com/kerbaras/komik/pkg/api"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailLoader_LoadingThenReady(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	source := &mockSource{
		getMangaFunc: func(ctx context.Context, id string) (*data.MangaDetail, error) {
			close(started)
			<-release
			return &data.MangaDetail{Manga: data.Manga{ID: id, Title: "Title"}}, nil
		},
	}
	loader := NewDetailLoader(source, nil)
	assert.Equal(t, DetailIdle, loader.State())

	errc := make(chan error, 1)
	go func() { errc <- loader.LoadDetail(context.Background(), "m1") }()
	<-started

	assert.Equal(t, DetailLoading, loader.State())
	assert.Nil(t, loader.Snapshot().Detail)

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, DetailReady, loader.State())
	assert.Equal(t, "Title", loader.Snapshot().Detail.Title)
}

func TestDetailLoader_NotFoundIsDistinctFromLoading(t *testing.T) {
	source := &mockSource{
		getMangaFunc: func(ctx context.Context, id string) (*data.MangaDetail, error) {
			return nil, &api.APIError{Code: 404, Message: "not found"}
		},
	}
	loader := NewDetailLoader(source, nil)

	err := loader.LoadDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, api.ErrUnsuccessful)

	s := loader.Snapshot()
	assert.Equal(t, DetailNotFound, s.State)
	assert.Nil(t, s.Detail)
	assert.Error(t, s.Err)
}

func TestDetailLoader_ReloadClearsPreviousRecord(t *testing.T) {
	fail := false
	source := &mockSource{
		getMangaFunc: func(ctx context.Context, id string) (*data.MangaDetail, error) {
			if fail {
				return nil, api.ErrTransport
			}
			return &data.MangaDetail{Manga: data.Manga{ID: id}}, nil
		},
	}
	loader := NewDetailLoader(source, nil)
	ctx := context.Background()

	require.NoError(t, loader.LoadDetail(ctx, "m1"))
	fail = true
	assert.Error(t, loader.LoadDetail(ctx, "m1"))
	assert.Equal(t, DetailNotFound, loader.State())
	assert.Nil(t, loader.Snapshot().Detail)
}

func TestDetailLoader_ChapterPage(t *testing.T) {
	var queries []sources.ChapterQuery
	source := &mockSource{
		listChaptersFunc: func(ctx context.Context, mangaID string, q sources.ChapterQuery) ([]data.ChapterSummary, data.Meta, error) {
			assert.Equal(t, "m1", mangaID)
			queries = append(queries, q)
			return []data.ChapterSummary{{ID: "c", Number: float64(q.Page)}}, data.Meta{TotalRecord: 50}, nil
		},
	}
	loader := NewDetailLoader(source, nil)
	ctx := context.Background()

	require.NoError(t, loader.LoadChapterPage(ctx, "m1", 1, 0, "chapter_number", ""))
	s := loader.Snapshot()
	assert.Equal(t, 50, s.ChapterTotal)
	assert.Equal(t, 3, s.ChapterPages)
	assert.Equal(t, data.SortDesc, s.SortOrder)
	assert.Equal(t, ChapterPageSize, s.ChapterPageSize)

	require.NoError(t, loader.ChapterPage(ctx, 3))
	assert.ErrorIs(t, loader.ChapterPage(ctx, 4), ErrNoPage)
	assert.ErrorIs(t, loader.ChapterPage(ctx, 0), ErrNoPage)

	require.NoError(t, loader.ToggleSort(ctx))
	s = loader.Snapshot()
	assert.Equal(t, data.SortAsc, s.SortOrder)
	assert.Equal(t, 1, s.ChapterPage)

	require.Len(t, queries, 3)
	assert.Equal(t, sources.ChapterQuery{Page: 1, PageSize: 24, SortBy: "chapter_number", SortOrder: data.SortDesc}, queries[0])
	assert.Equal(t, 3, queries[1].Page)
	assert.Equal(t, data.SortAsc, queries[2].SortOrder)
}

func TestDetailLoader_ChapterFailureKeepsItems(t *testing.T) {
	fail := false
	source := &mockSource{
		listChaptersFunc: func(ctx context.Context, mangaID string, q sources.ChapterQuery) ([]data.ChapterSummary, data.Meta, error) {
			if fail {
				return nil, data.Meta{}, api.ErrTransport
			}
			return []data.ChapterSummary{{ID: "c1"}}, data.Meta{TotalRecord: 30}, nil
		},
	}
	loader := NewDetailLoader(source, nil)
	ctx := context.Background()

	require.NoError(t, loader.LoadChapterPage(ctx, "m1", 1, 24, "chapter_number", data.SortDesc))
	fail = true
	assert.Error(t, loader.ChapterPage(ctx, 2))

	s := loader.Snapshot()
	assert.Len(t, s.Chapters, 1)
	assert.ErrorIs(t, s.ChaptersErr, api.ErrTransport)
	assert.False(t, s.ChaptersLoading)
}

func TestDetailLoader_SwitchingMangaDropsChapters(t *testing.T) {
	source := &mockSource{
		getMangaFunc: func(ctx context.Context, id string) (*data.MangaDetail, error) {
			return &data.MangaDetail{Manga: data.Manga{ID: id}}, nil
		},
		listChaptersFunc: func(ctx context.Context, mangaID string, q sources.ChapterQuery) ([]data.ChapterSummary, data.Meta, error) {
			return []data.ChapterSummary{{ID: mangaID + "-c1"}}, data.Meta{TotalRecord: 1}, nil
		},
	}
	loader := NewDetailLoader(source, nil)
	ctx := context.Background()

	require.NoError(t, loader.LoadDetail(ctx, "m1"))
	require.NoError(t, loader.LoadChapterPage(ctx, "m1", 1, 24, "chapter_number", data.SortDesc))
	require.NoError(t, loader.LoadDetail(ctx, "m1"))
	assert.Len(t, loader.Snapshot().Chapters, 1, "same manga keeps its chapters")

	require.NoError(t, loader.LoadDetail(ctx, "m2"))
	s := loader.Snapshot()
	assert.Empty(t, s.Chapters)
	assert.Equal(t, 0, s.ChapterTotal)
	assert.Equal(t, 1, s.ChapterPage)
}
