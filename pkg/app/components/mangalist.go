package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
)

type MangaListItem struct {
	Manga data.Manga
}

type MangaList struct {
	Items         []MangaListItem
	SelectedIndex int
	Width         int
	Height        int
	EmptyText     string
	Now           func() time.Time
}

func NewMangaList() *MangaList {
	return &MangaList{
		Items:         []MangaListItem{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
		EmptyText:     "No manga found",
		Now:           time.Now,
	}
}

// SetMangas replaces the items and moves the selection to the top.
func (m *MangaList) SetMangas(mangas []data.Manga) {
	items := make([]MangaListItem, len(mangas))
	for i, manga := range mangas {
		items[i] = MangaListItem{Manga: manga}
	}
	m.SetItems(items)
	m.SelectedIndex = 0
}

func (m *MangaList) SetItems(items []MangaListItem) {
	m.Items = items
	if m.SelectedIndex >= len(items) && len(items) > 0 {
		m.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		m.SelectedIndex = 0
	}
}

func (m *MangaList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *MangaList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

func (m *MangaList) Selected() *MangaListItem {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

// rowHeight is the number of lines one entry takes.
const rowHeight = 3

// visibleRange returns the window of items that fits Height around the selection.
func (m *MangaList) visibleRange() (int, int) {
	fit := max(1, m.Height/rowHeight)
	return window(len(m.Items), m.SelectedIndex, fit)
}

func (m *MangaList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render(m.EmptyText)
		return lipgloss.Place(m.Width, max(1, m.Height), lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}

	start, end := m.visibleRange()
	var b strings.Builder
	for i := start; i < end; i++ {
		manga := m.Items[i].Manga

		marker := "  "
		title := styles.TextStyle.Bold(true).Render(manga.Title)
		if i == m.SelectedIndex {
			marker = styles.SelectedStyle.Render("▶ ")
			title = styles.SelectedStyle.Render(manga.Title)
		}

		stats := []string{
			"★ " + format.Rating(manga.Rating),
			format.Number(manga.ViewCount) + " views",
		}
		if manga.LatestChapterNumber > 0 {
			stats = append(stats, "Ch. "+format.ChapterNumber(manga.LatestChapterNumber))
		}
		if !manga.LatestChapterTime.IsZero() {
			stats = append(stats, format.RelativeDate(manga.LatestChapterTime, now))
		}
		if manga.CountryID != "" {
			stats = append(stats, manga.CountryID)
		}

		b.WriteString(marker + title + "\n")
		b.WriteString("  " + styles.MutedStyle.Render(strings.Join(stats, " · ")) + "\n")
		if len(manga.Genres) > 0 {
			b.WriteString("  " + styles.SubtitleStyle.Render(truncate(strings.Join(manga.Genres, ", "), m.Width-4)))
		}
		b.WriteString("\n")
	}

	if start > 0 || end < len(m.Items) {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(m.Items))))
	}
	return b.String()
}

// window returns [start, end) of length at most size containing selected.
func window(total, selected, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := selected - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > total {
		end = total
		start = end - size
	}
	return start, end
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
