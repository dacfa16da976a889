package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kerbaras/komik/pkg/data"
)

func testMangas(n int) []data.Manga {
	out := make([]data.Manga, n)
	for i := range out {
		out[i] = data.Manga{ID: fmt.Sprint(i + 1), Title: fmt.Sprintf("Manga %d", i+1)}
	}
	return out
}

func TestNewMangaList(t *testing.T) {
	list := NewMangaList()

	if list == nil {
		t.Fatal("Expected manga list to be created")
	}

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", list.SelectedIndex)
	}

	if len(list.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(list.Items))
	}
}

func TestSetMangas(t *testing.T) {
	list := NewMangaList()
	list.SetMangas(testMangas(3))
	list.SelectedIndex = 2

	list.SetMangas(testMangas(5))
	if list.SelectedIndex != 0 {
		t.Errorf("Expected a new page to select the first item, got %d", list.SelectedIndex)
	}
	if len(list.Items) != 5 {
		t.Errorf("Expected 5 items, got %d", len(list.Items))
	}
}

func TestSetItemsClampsSelection(t *testing.T) {
	list := NewMangaList()
	list.SetMangas(testMangas(3))
	list.SelectedIndex = 2

	list.SetItems([]MangaListItem{{Manga: data.Manga{ID: "1"}}})

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to be reset to 0, got %d", list.SelectedIndex)
	}
}

func TestNext(t *testing.T) {
	list := NewMangaList()
	list.SetMangas(testMangas(3))

	list.Next()
	if list.SelectedIndex != 1 {
		t.Errorf("Expected SelectedIndex 1, got %d", list.SelectedIndex)
	}

	list.Next()
	list.Next()
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to wrap to 0, got %d", list.SelectedIndex)
	}
}

func TestPrev(t *testing.T) {
	list := NewMangaList()
	list.SetMangas(testMangas(3))

	list.Prev()
	if list.SelectedIndex != 2 {
		t.Errorf("Expected SelectedIndex to wrap to 2, got %d", list.SelectedIndex)
	}

	list.Prev()
	if list.SelectedIndex != 1 {
		t.Errorf("Expected SelectedIndex 1, got %d", list.SelectedIndex)
	}
}

func TestNextPrevEmptyList(t *testing.T) {
	list := NewMangaList()

	// Should not panic with empty list
	list.Next()
	list.Prev()

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to remain 0, got %d", list.SelectedIndex)
	}
}

func TestSelected(t *testing.T) {
	list := NewMangaList()

	if list.Selected() != nil {
		t.Error("Expected nil for empty list")
	}

	list.SetMangas(testMangas(2))
	if got := list.Selected(); got == nil || got.Manga.ID != "1" {
		t.Fatalf("Expected manga 1 selected, got %+v", got)
	}

	list.Next()
	if got := list.Selected(); got.Manga.ID != "2" {
		t.Errorf("Expected selected manga ID '2', got '%s'", got.Manga.ID)
	}
}

func TestViewEmptyList(t *testing.T) {
	list := NewMangaList()
	list.EmptyText = "Nothing here"

	if view := list.View(); !strings.Contains(view, "Nothing here") {
		t.Error("Expected empty message")
	}
}

func TestViewWithItems(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	list := NewMangaList()
	list.Now = func() time.Time { return now }
	list.SetMangas([]data.Manga{{
		ID:                  "1",
		Title:               "Test Manga",
		Rating:              9.1,
		ViewCount:           1_500_000,
		LatestChapterNumber: 120.5,
		LatestChapterTime:   now.AddDate(0, 0, -2),
		Genres:              []string{"Action", "Drama"},
	}})

	view := list.View()
	for _, want := range []string{"Test Manga", "★ 9.1", "1.5M views", "Ch. 120.5", "2 days ago", "Action, Drama"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view:\n%s", want, view)
		}
	}
}

func TestViewWindowsLongLists(t *testing.T) {
	list := NewMangaList()
	list.Height = rowHeight * 4
	list.SetMangas(testMangas(24))
	for i := 0; i < 10; i++ {
		list.Next()
	}

	view := list.View()
	if !strings.Contains(view, "Manga 11") {
		t.Error("Expected the selected manga to be visible")
	}
	if strings.Contains(view, "Manga 1\n") {
		t.Error("Expected the first manga to be scrolled out")
	}
	if !strings.Contains(view, "of 24") {
		t.Error("Expected a position footer")
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		total, selected, size int
		start, end            int
	}{
		{5, 0, 10, 0, 5},
		{20, 0, 4, 0, 4},
		{20, 10, 4, 8, 12},
		{20, 19, 4, 16, 20},
	}
	for _, tt := range tests {
		start, end := window(tt.total, tt.selected, tt.size)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = [%d, %d), want [%d, %d)",
				tt.total, tt.selected, tt.size, start, end, tt.start, tt.end)
		}
	}
}
