package components

import (
	"strings"
	"testing"
	"time"

	"github.com/kerbaras/komik/pkg/data"
)

func TestChapterList_Navigation(t *testing.T) {
	list := NewChapterList()
	list.SetItems([]data.ChapterSummary{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	list.Prev()
	if list.SelectedIndex != 0 {
		t.Errorf("Prev() at the top should stay at 0, got %d", list.SelectedIndex)
	}
	list.Next()
	list.Next()
	list.Next()
	if list.SelectedIndex != 2 {
		t.Errorf("Next() at the bottom should stay at 2, got %d", list.SelectedIndex)
	}
	if got := list.Selected(); got == nil || got.ID != "c" {
		t.Errorf("Selected() = %+v, want c", got)
	}

	list.SetItems([]data.ChapterSummary{{ID: "x"}})
	if list.SelectedIndex != 0 {
		t.Errorf("SetItems() should clamp the selection, got %d", list.SelectedIndex)
	}

	list.SetItems(nil)
	if list.Selected() != nil {
		t.Error("Selected() should be nil on an empty list")
	}
}

func TestChapterList_View(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	list := NewChapterList()
	list.Now = func() time.Time { return now }
	list.Current = "c2"
	list.SetItems([]data.ChapterSummary{
		{ID: "c1", Number: 1, Title: "Start", ViewCount: 2500, ReleaseDate: now.AddDate(0, 0, -1)},
		{ID: "c2", Number: 1.5},
	})

	view := list.View()
	for _, want := range []string{"Ch. 1: Start", "2.5K views", "yesterday", "● Ch. 1.5"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view:\n%s", want, view)
		}
	}

	if got := NewChapterList().View(); !strings.Contains(got, "No chapters") {
		t.Errorf("empty view = %q", got)
	}
}
