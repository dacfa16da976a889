package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/sources"
	"golang.org/x/sync/errgroup"
)

// ChapterBatchSize is the page size used when fetching a whole chapter list.
const ChapterBatchSize = 100

// LoadAllChapters pages through every chapter of mangaID. Page 1 is fetched
// alone to learn the page count, then the remaining pages are fetched
// concurrently and appended in page order. Any failed page fails the whole
// load.
func LoadAllChapters(ctx context.Context, source sources.Source, mangaID string, order data.SortOrder) ([]data.ChapterSummary, error) {
	query := func(page int) sources.ChapterQuery {
		return sources.ChapterQuery{
			Page:      page,
			PageSize:  ChapterBatchSize,
			SortBy:    "chapter_number",
			SortOrder: order,
		}
	}

	first, meta, err := source.ListChapters(ctx, mangaID, query(1))
	if err != nil {
		return nil, fmt.Errorf("failed to load chapter page 1: %w", err)
	}
	if meta.TotalPage <= 1 {
		return first, nil
	}

	rest := make([][]data.ChapterSummary, meta.TotalPage-1)
	g, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= meta.TotalPage; page++ {
		g.Go(func() error {
			chapters, _, err := source.ListChapters(gctx, mangaID, query(page))
			if err != nil {
				return fmt.Errorf("failed to load chapter page %d: %w", page, err)
			}
			rest[page-2] = chapters
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := first
	for _, chapters := range rest {
		all = append(all, chapters...)
	}
	return all, nil
}

// SortChapters returns a copy of chapters ordered by number.
func SortChapters(chapters []data.ChapterSummary, order data.SortOrder) []data.ChapterSummary {
	out := make([]data.ChapterSummary, len(chapters))
	copy(out, chapters)
	sort.SliceStable(out, func(i, j int) bool {
		if order == data.SortAsc {
			return out[i].Number < out[j].Number
		}
		return out[i].Number > out[j].Number
	})
	return out
}

// FilterChapters matches query against chapters and sorts the result.
//
// An all-digit query matches chapter numbers exactly. Anything else is
// lower-cased and split into words; a chapter matches when every query word
// equals or prefixes some word of its title. A blank query keeps everything.
func FilterChapters(chapters []data.ChapterSummary, query string, order data.SortOrder) []data.ChapterSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return SortChapters(chapters, order)
	}

	var match func(data.ChapterSummary) bool
	if isDigits(query) {
		match = func(c data.ChapterSummary) bool {
			return data.FormatChapterNumber(c.Number) == query
		}
	} else {
		terms := strings.Fields(strings.ToLower(query))
		match = func(c data.ChapterSummary) bool {
			return titleMatches(c.Title, terms)
		}
	}

	var out []data.ChapterSummary
	for _, c := range chapters {
		if match(c) {
			out = append(out, c)
		}
	}
	return SortChapters(out, order)
}

func titleMatches(title string, terms []string) bool {
	words := strings.Fields(strings.ToLower(title))
	for _, term := range terms {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
