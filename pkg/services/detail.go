package services

import (
	"context"
	"sync"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/logger"
	"github.com/kerbaras/komik/pkg/sources"
)

// ChapterPageSize is the default size of a chapter-list page.
const ChapterPageSize = 24

type DetailState int

const (
	DetailIdle DetailState = iota
	DetailLoading
	DetailReady
	// DetailNotFound is a finished load with no record: missing id, failed
	// request and unsuccessful response all end here.
	DetailNotFound
)

func (s DetailState) String() string {
	switch s {
	case DetailLoading:
		return "loading"
	case DetailReady:
		return "ready"
	case DetailNotFound:
		return "not found"
	default:
		return "idle"
	}
}

// DetailSnapshot is a copy of the loader's view state.
type DetailSnapshot struct {
	State  DetailState
	Detail *data.MangaDetail
	Err    error

	Chapters        []data.ChapterSummary
	ChapterTotal    int
	ChapterPage     int
	ChapterPages    int
	ChapterPageSize int
	SortBy          string
	SortOrder       data.SortOrder
	ChaptersLoading bool
	ChaptersErr     error
}

// DetailLoader holds one manga's metadata and one page of its chapters.
type DetailLoader struct {
	source sources.Source
	log    *logger.Logger

	mu            sync.Mutex
	detailFlight  flight
	chapterFlight flight

	mangaID string
	detail  *data.MangaDetail
	loading bool
	started bool
	err     error

	chapters        []data.ChapterSummary
	chapterTotal    int
	chapterPage     int
	chapterPageSize int
	sortBy          string
	sortOrder       data.SortOrder
	chaptersLoading bool
	chaptersErr     error
}

func NewDetailLoader(source sources.Source, log *logger.Logger) *DetailLoader {
	if log == nil {
		log = logger.Discard()
	}
	return &DetailLoader{
		source:          source,
		log:             log.With("view", "detail"),
		chapterPage:     1,
		chapterPageSize: ChapterPageSize,
		sortBy:          "chapter_number",
		sortOrder:       data.SortDesc,
	}
}

// LoadDetail fetches the metadata of id. The previous record is cleared as
// soon as the load begins; a switch to another id also drops its chapters.
func (l *DetailLoader) LoadDetail(ctx context.Context, id string) error {
	l.mu.Lock()
	ctx, gen := l.detailFlight.begin(ctx)
	if id != l.mangaID {
		l.chapterFlight.stop()
		l.chapters = nil
		l.chapterTotal = 0
		l.chapterPage = 1
		l.chaptersLoading = false
		l.chaptersErr = nil
	}
	l.mangaID = id
	l.detail = nil
	l.loading = true
	l.started = true
	l.err = nil
	l.mu.Unlock()

	detail, err := l.source.GetManga(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.detailFlight.current(gen) {
		return ErrSuperseded
	}
	l.detailFlight.finish(gen)
	l.loading = false

	if err != nil {
		l.err = err
		l.log.Failure("load detail", err, "id", id)
		return err
	}
	l.detail = detail
	return nil
}

// LoadChapterPage fetches one page of id's chapters. Items and total are
// replaced wholesale on success.
func (l *DetailLoader) LoadChapterPage(ctx context.Context, id string, page, pageSize int, sortBy string, sortOrder data.SortOrder) error {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = ChapterPageSize
	}
	if sortOrder == "" {
		sortOrder = data.SortDesc
	}

	l.mu.Lock()
	ctx, gen := l.chapterFlight.begin(ctx)
	l.mangaID = id
	l.chapterPage = page
	l.chapterPageSize = pageSize
	l.sortBy = sortBy
	l.sortOrder = sortOrder
	l.chaptersLoading = true
	l.chaptersErr = nil
	l.mu.Unlock()

	chapters, meta, err := l.source.ListChapters(ctx, id, sources.ChapterQuery{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.chapterFlight.current(gen) {
		return ErrSuperseded
	}
	l.chapterFlight.finish(gen)
	l.chaptersLoading = false

	if err != nil {
		l.chaptersErr = err
		l.log.Failure("load chapter page", err, "id", id, "page", page)
		return err
	}
	l.chapters = chapters
	l.chapterTotal = meta.TotalRecord
	return nil
}

// ChapterPage loads page with the current size and order.
func (l *DetailLoader) ChapterPage(ctx context.Context, page int) error {
	s := l.Snapshot()
	if page < 1 || (s.ChapterPages > 0 && page > s.ChapterPages) {
		return ErrNoPage
	}
	return l.LoadChapterPage(ctx, l.id(), page, s.ChapterPageSize, s.SortBy, s.SortOrder)
}

// ToggleSort flips asc/desc and reloads the first page.
func (l *DetailLoader) ToggleSort(ctx context.Context) error {
	s := l.Snapshot()
	return l.LoadChapterPage(ctx, l.id(), 1, s.ChapterPageSize, s.SortBy, s.SortOrder.Toggle())
}

// State distinguishes an in-flight load from a finished load that found
// nothing.
func (l *DetailLoader) State() DetailState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state()
}

func (l *DetailLoader) state() DetailState {
	switch {
	case l.loading:
		return DetailLoading
	case l.detail != nil:
		return DetailReady
	case l.started:
		return DetailNotFound
	default:
		return DetailIdle
	}
}

func (l *DetailLoader) Snapshot() DetailSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	chapters := make([]data.ChapterSummary, len(l.chapters))
	copy(chapters, l.chapters)
	return DetailSnapshot{
		State:           l.state(),
		Detail:          l.detail,
		Err:             l.err,
		Chapters:        chapters,
		ChapterTotal:    l.chapterTotal,
		ChapterPage:     l.chapterPage,
		ChapterPages:    TotalPages(l.chapterTotal, l.chapterPageSize),
		ChapterPageSize: l.chapterPageSize,
		SortBy:          l.sortBy,
		SortOrder:       l.sortOrder,
		ChaptersLoading: l.chaptersLoading,
		ChaptersErr:     l.chaptersErr,
	}
}

// Close cancels both in-flight requests.
func (l *DetailLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detailFlight.stop()
	l.chapterFlight.stop()
	l.loading = false
	l.chaptersLoading = false
}

func (l *DetailLoader) id() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mangaID
}
