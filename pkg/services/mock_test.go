package services

import (
	"context"
	"sync"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/sources"
)

// Mock implementations for testing

type mockSource struct {
	listMangaFunc    func(ctx context.Context, q sources.ListQuery) ([]data.Manga, data.Meta, error)
	searchMangaFunc  func(ctx context.Context, query string, page, pageSize int) ([]data.Manga, data.Meta, error)
	getMangaFunc     func(ctx context.Context, id string) (*data.MangaDetail, error)
	listChaptersFunc func(ctx context.Context, mangaID string, q sources.ChapterQuery) ([]data.ChapterSummary, data.Meta, error)
	getChapterFunc   func(ctx context.Context, chapterID string) (*data.ChapterContent, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockSource) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSource) ListManga(ctx context.Context, q sources.ListQuery) ([]data.Manga, data.Meta, error) {
	m.record("ListManga")
	if m.listMangaFunc != nil {
		return m.listMangaFunc(ctx, q)
	}
	return nil, data.Meta{}, nil
}

func (m *mockSource) SearchManga(ctx context.Context, query string, page, pageSize int) ([]data.Manga, data.Meta, error) {
	m.record("SearchManga")
	if m.searchMangaFunc != nil {
		return m.searchMangaFunc(ctx, query, page, pageSize)
	}
	return nil, data.Meta{}, nil
}

func (m *mockSource) GetManga(ctx context.Context, id string) (*data.MangaDetail, error) {
	m.record("GetManga")
	if m.getMangaFunc != nil {
		return m.getMangaFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSource) ListChapters(ctx context.Context, mangaID string, q sources.ChapterQuery) ([]data.ChapterSummary, data.Meta, error) {
	m.record("ListChapters")
	if m.listChaptersFunc != nil {
		return m.listChaptersFunc(ctx, mangaID, q)
	}
	return nil, data.Meta{}, nil
}

func (m *mockSource) GetChapter(ctx context.Context, chapterID string) (*data.ChapterContent, error) {
	m.record("GetChapter")
	if m.getChapterFunc != nil {
		return m.getChapterFunc(ctx, chapterID)
	}
	return nil, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
