package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/logger"
	"github.com/kerbaras/komik/pkg/sources"
)

const (
	// CatalogPageSize is fixed for both listing and search.
	CatalogPageSize = 24
	// RecommendedSize is the length of the recommended strip.
	RecommendedSize = 12
)

// RecommendedFormats are the tabs of the recommended strip.
var RecommendedFormats = []string{"manga", "manhwa", "manhua"}

type CatalogMode int

const (
	ModeListing CatalogMode = iota
	ModeSearch
)

func (m CatalogMode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "listing"
}

// CatalogState is a copy of the browser's view state.
type CatalogState struct {
	Items      []data.Manga
	Total      int
	Page       int
	TotalPages int
	Query      string
	Mode       CatalogMode
	SortOrder  data.SortOrder
	Loading    bool
	Err        error
}

// CatalogBrowser holds one page of the catalog, either the latest-updated
// listing or a search result.
type CatalogBrowser struct {
	source sources.Source
	log    *logger.Logger

	mu        sync.Mutex
	flight    flight
	items     []data.Manga
	total     int
	page      int
	query     string
	mode      CatalogMode
	sortOrder data.SortOrder
	loading   bool
	err       error
}

func NewCatalogBrowser(source sources.Source, log *logger.Logger) *CatalogBrowser {
	if log == nil {
		log = logger.Discard()
	}
	return &CatalogBrowser{
		source:    source,
		log:       log.With("view", "catalog"),
		page:      1,
		sortOrder: data.SortDesc,
	}
}

// LoadPage fetches page. A non-blank query hits the search endpoint,
// otherwise the listing endpoint sorted by latest update in sortOrder.
// On success the items and total are replaced; on failure the previous page
// stays visible and the error is logged and recorded.
func (b *CatalogBrowser) LoadPage(ctx context.Context, page int, query string, sortOrder data.SortOrder) error {
	if page < 1 {
		page = 1
	}
	if sortOrder == "" {
		sortOrder = data.SortDesc
	}
	query = strings.TrimSpace(query)

	b.mu.Lock()
	ctx, gen := b.flight.begin(ctx)
	b.page = page
	b.query = query
	b.sortOrder = sortOrder
	b.mode = ModeListing
	if query != "" {
		b.mode = ModeSearch
	}
	b.loading = true
	b.err = nil
	b.mu.Unlock()

	var (
		items []data.Manga
		meta  data.Meta
		err   error
	)
	if query != "" {
		items, meta, err = b.source.SearchManga(ctx, query, page, CatalogPageSize)
	} else {
		items, meta, err = b.source.ListManga(ctx, sources.ListQuery{
			Page:      page,
			PageSize:  CatalogPageSize,
			Type:      "project",
			Updated:   true,
			Sort:      "latest",
			SortOrder: sortOrder,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.flight.current(gen) {
		return ErrSuperseded
	}
	b.flight.finish(gen)
	b.loading = false

	if err != nil {
		b.err = err
		b.log.Failure("load catalog page", err, "page", page, "query", query)
		return err
	}
	b.items = items
	b.total = meta.TotalRecord
	return nil
}

// Search starts a search from page 1. A blank query returns to the listing.
func (b *CatalogBrowser) Search(ctx context.Context, query string) error {
	return b.LoadPage(ctx, 1, query, b.currentOrder())
}

// ClearSearch drops the query and shows listing page 1.
func (b *CatalogBrowser) ClearSearch(ctx context.Context) error {
	return b.LoadPage(ctx, 1, "", b.currentOrder())
}

// Reload fetches the current page again.
func (b *CatalogBrowser) Reload(ctx context.Context) error {
	s := b.Snapshot()
	return b.LoadPage(ctx, s.Page, s.Query, s.SortOrder)
}

// GoTo loads page if it lies within the known page range.
func (b *CatalogBrowser) GoTo(ctx context.Context, page int) error {
	s := b.Snapshot()
	if page < 1 || (s.TotalPages > 0 && page > s.TotalPages) {
		return fmt.Errorf("%w: %d of %d", ErrNoPage, page, s.TotalPages)
	}
	return b.LoadPage(ctx, page, s.Query, s.SortOrder)
}

func (b *CatalogBrowser) NextPage(ctx context.Context) error {
	return b.GoTo(ctx, b.Snapshot().Page+1)
}

func (b *CatalogBrowser) PrevPage(ctx context.Context) error {
	return b.GoTo(ctx, b.Snapshot().Page-1)
}

// ToggleSort flips the listing order and reloads page 1.
func (b *CatalogBrowser) ToggleSort(ctx context.Context) error {
	s := b.Snapshot()
	return b.LoadPage(ctx, 1, s.Query, s.SortOrder.Toggle())
}

// Recommended fetches the recommended strip for format.
func (b *CatalogBrowser) Recommended(ctx context.Context, format string) ([]data.Manga, error) {
	valid := false
	for _, f := range RecommendedFormats {
		if f == format {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown format %q", format)
	}

	items, _, err := b.source.ListManga(ctx, sources.ListQuery{
		Page:        1,
		PageSize:    RecommendedSize,
		Format:      format,
		Recommended: true,
		Sort:        "latest",
		SortOrder:   data.SortDesc,
	})
	if err != nil {
		b.log.Failure("load recommended", err, "format", format)
		return nil, err
	}
	return items, nil
}

func (b *CatalogBrowser) Snapshot() CatalogState {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := make([]data.Manga, len(b.items))
	copy(items, b.items)
	return CatalogState{
		Items:      items,
		Total:      b.total,
		Page:       b.page,
		TotalPages: TotalPages(b.total, CatalogPageSize),
		Query:      b.query,
		Mode:       b.mode,
		SortOrder:  b.sortOrder,
		Loading:    b.loading,
		Err:        b.err,
	}
}

// Close cancels any in-flight request.
func (b *CatalogBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flight.stop()
	b.loading = false
}

func (b *CatalogBrowser) currentOrder() data.SortOrder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortOrder
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
