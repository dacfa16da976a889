package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/logger"
	"github.com/kerbaras/komik/pkg/sources"
)

// VisibilityThreshold is the share of a page that must be on screen before
// it counts as the current page.
const VisibilityThreshold = 0.5

type NavState int

const (
	NavIdle NavState = iota
	NavLoading
	NavReady
	NavError
)

func (s NavState) String() string {
	switch s {
	case NavLoading:
		return "loading"
	case NavReady:
		return "ready"
	case NavError:
		return "error"
	default:
		return "idle"
	}
}

// DrawerSnapshot is a copy of the chapter-list drawer state.
type DrawerSnapshot struct {
	Open      bool
	Loading   bool
	Err       error
	Query     string
	SortOrder data.SortOrder
	Total     int
	Chapters  []data.ChapterSummary
}

// ChapterNavigator is the reader: one loaded chapter, its image sequence,
// links to its neighbours and a searchable list of every chapter of the
// same manga.
type ChapterNavigator struct {
	source sources.Source
	log    *logger.Logger

	mu        sync.Mutex
	flight    flight
	state     NavState
	chapterID string
	content   *data.ChapterContent
	quality   data.Quality
	current   int
	err       error

	drawerFlight  flight
	drawerOpen    bool
	drawerLoading bool
	drawerManga   string
	drawerErr     error
	drawerQuery   string
	drawerSort    data.SortOrder
	cache         map[string][]data.ChapterSummary
}

func NewChapterNavigator(source sources.Source, quality data.Quality, log *logger.Logger) *ChapterNavigator {
	if log == nil {
		log = logger.Discard()
	}
	if quality == "" {
		quality = data.QualityHigh
	}
	return &ChapterNavigator{
		source:     source,
		log:        log.With("view", "reader"),
		quality:    quality,
		drawerSort: data.SortDesc,
		cache:      make(map[string][]data.ChapterSummary),
	}
}

// Load enters chapterID: the previous chapter is dropped, the page position
// resets and the content is fetched. A failure leaves the navigator in
// NavError with no content.
func (n *ChapterNavigator) Load(ctx context.Context, chapterID string) error {
	n.mu.Lock()
	ctx, gen := n.flight.begin(ctx)
	n.state = NavLoading
	n.chapterID = chapterID
	n.content = nil
	n.current = 0
	n.err = nil
	n.mu.Unlock()

	content, err := n.source.GetChapter(ctx, chapterID)

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.flight.current(gen) {
		return ErrSuperseded
	}
	n.flight.finish(gen)

	if err != nil {
		n.state = NavError
		n.err = err
		n.log.Failure("load chapter", err, "id", chapterID)
		return err
	}
	n.state = NavReady
	n.content = content
	return nil
}

func (n *ChapterNavigator) State() NavState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *ChapterNavigator) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// ChapterID is the identifier most recently passed to Load.
func (n *ChapterNavigator) ChapterID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chapterID
}

// Content returns the loaded chapter or nil.
func (n *ChapterNavigator) Content() *data.ChapterContent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.content
}

func (n *ChapterNavigator) Quality() data.Quality {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.quality
}

// ToggleQuality switches image host. Only URL construction changes.
func (n *ChapterNavigator) ToggleQuality() data.Quality {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.quality = n.quality.Toggle()
	return n.quality
}

// Pages resolves every image of the loaded chapter at the current quality.
func (n *ChapterNavigator) Pages() []data.Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.content.Pages(n.quality)
}

// ImageURL resolves image i at the current quality.
func (n *ChapterNavigator) ImageURL(i int) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.content == nil || i < 0 || i >= len(n.content.Files) {
		return "", false
	}
	return n.content.ImageURL(n.quality, n.content.Files[i]), true
}

func (n *ChapterNavigator) CanPrev() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.content.HasPrev()
}

func (n *ChapterNavigator) CanNext() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.content.HasNext()
}

// Prev returns the previous chapter's id; ok is false at the start of the
// sequence or when nothing is loaded.
func (n *ChapterNavigator) Prev() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.content.HasPrev() {
		return "", false
	}
	return *n.content.PrevID, true
}

// Next returns the next chapter's id; ok is false at the end.
func (n *ChapterNavigator) Next() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.content.HasNext() {
		return "", false
	}
	return *n.content.NextID, true
}

// BackTarget is the manga whose chapter list the reader returns to. Empty
// when no chapter is loaded.
func (n *ChapterNavigator) BackTarget() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.content == nil {
		return ""
	}
	return n.content.MangaID
}

// ObservePage records that page index is visibleRatio on screen. Crossing
// the visibility threshold makes it the current page.
func (n *ChapterNavigator) ObservePage(index int, visibleRatio float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.content == nil || index < 0 || index >= len(n.content.Files) {
		return
	}
	if visibleRatio >= VisibilityThreshold {
		n.current = index
	}
}

func (n *ChapterNavigator) CurrentPage() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// PageLabel renders "Page X / Y".
func (n *ChapterNavigator) PageLabel() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.content == nil {
		return ""
	}
	return fmt.Sprintf("Page %d / %d", n.current+1, len(n.content.Files))
}

// ReaderSnapshot is a consistent copy of the reader state for one frame.
type ReaderSnapshot struct {
	State     NavState
	Err       error
	ChapterID string
	Content   *data.ChapterContent
	Quality   data.Quality
	Pages     []data.Page
	Current   int
	Label     string
	CanPrev   bool
	CanNext   bool
}

// Snapshot copies everything a frame needs under a single lock, so a Load
// running elsewhere cannot change the chapter halfway through a render.
func (n *ChapterNavigator) Snapshot() ReaderSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap := ReaderSnapshot{
		State:     n.state,
		Err:       n.err,
		ChapterID: n.chapterID,
		Content:   n.content,
		Quality:   n.quality,
		Pages:     n.content.Pages(n.quality),
		Current:   n.current,
		CanPrev:   n.content.HasPrev(),
		CanNext:   n.content.HasNext(),
	}
	if n.content != nil {
		snap.Label = fmt.Sprintf("Page %d / %d", n.current+1, len(n.content.Files))
	}
	return snap
}

// OpenDrawer shows the chapter list and fetches every chapter of the owning
// manga unless it is already cached.
func (n *ChapterNavigator) OpenDrawer(ctx context.Context) error {
	n.mu.Lock()
	n.drawerOpen = true
	if n.content == nil {
		n.mu.Unlock()
		return nil
	}
	mangaID := n.content.MangaID
	if _, ok := n.cache[mangaID]; ok {
		n.drawerManga = mangaID
		n.mu.Unlock()
		return nil
	}
	if n.drawerLoading && n.drawerManga == mangaID {
		n.mu.Unlock()
		return nil
	}
	ctx, gen := n.drawerFlight.begin(ctx)
	n.drawerManga = mangaID
	n.drawerLoading = true
	n.drawerErr = nil
	n.mu.Unlock()

	chapters, err := LoadAllChapters(ctx, n.source, mangaID, data.SortDesc)

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.drawerFlight.current(gen) {
		return ErrSuperseded
	}
	n.drawerFlight.finish(gen)
	n.drawerLoading = false

	if err != nil {
		n.drawerErr = err
		n.log.Failure("load all chapters", err, "manga", mangaID)
		return err
	}
	n.cache[mangaID] = chapters
	return nil
}

func (n *ChapterNavigator) CloseDrawer() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drawerOpen = false
}

// SetFilter changes the drawer query. Filtering is local.
func (n *ChapterNavigator) SetFilter(query string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drawerQuery = query
}

// SetDrawerSort changes the order filtered results are shown in.
func (n *ChapterNavigator) SetDrawerSort(order data.SortOrder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drawerSort = order
}

// Drawer returns the filtered, sorted chapter list for the owning manga.
func (n *ChapterNavigator) Drawer() DrawerSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	all := n.cache[n.drawerManga]
	return DrawerSnapshot{
		Open:      n.drawerOpen,
		Loading:   n.drawerLoading,
		Err:       n.drawerErr,
		Query:     n.drawerQuery,
		SortOrder: n.drawerSort,
		Total:     len(all),
		Chapters:  FilterChapters(all, n.drawerQuery, n.drawerSort),
	}
}

// Close cancels the chapter and drawer requests.
func (n *ChapterNavigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.flight.stop()
	n.drawerFlight.stop()
	n.drawerLoading = false
	if n.state == NavLoading {
		n.state = NavIdle
	}
}
