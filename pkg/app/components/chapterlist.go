package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
)

// ChapterList is a scrolling, single-line-per-row list of chapters.
type ChapterList struct {
	Items         []data.ChapterSummary
	SelectedIndex int
	Width         int
	Height        int
	// Current marks the chapter being read, if any.
	Current string
	Now     func() time.Time
}

func NewChapterList() *ChapterList {
	return &ChapterList{Width: 80, Height: 10, Now: time.Now}
}

func (c *ChapterList) SetItems(items []data.ChapterSummary) {
	c.Items = items
	if c.SelectedIndex >= len(items) {
		c.SelectedIndex = max(0, len(items)-1)
	}
}

func (c *ChapterList) Next() {
	if c.SelectedIndex < len(c.Items)-1 {
		c.SelectedIndex++
	}
}

func (c *ChapterList) Prev() {
	if c.SelectedIndex > 0 {
		c.SelectedIndex--
	}
}

func (c *ChapterList) Selected() *data.ChapterSummary {
	if c.SelectedIndex < 0 || c.SelectedIndex >= len(c.Items) {
		return nil
	}
	return &c.Items[c.SelectedIndex]
}

func (c *ChapterList) View() string {
	if len(c.Items) == 0 {
		return styles.MutedStyle.Render("No chapters")
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	start, end := window(len(c.Items), c.SelectedIndex, max(1, c.Height))
	var b strings.Builder
	for i := start; i < end; i++ {
		ch := c.Items[i]

		label := "Ch. " + format.ChapterNumber(ch.Number)
		if ch.Title != "" {
			label += ": " + ch.Title
		}
		meta := []string{}
		if ch.ViewCount > 0 {
			meta = append(meta, format.Number(ch.ViewCount)+" views")
		}
		if !ch.ReleaseDate.IsZero() {
			meta = append(meta, format.RelativeDate(ch.ReleaseDate, now))
		}

		icon := "○"
		if ch.ID == c.Current {
			icon = "●"
		}
		line := fmt.Sprintf("%s %s", icon, truncate(label, c.Width-24))
		if i == c.SelectedIndex {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = styles.TextStyle.Render(line)
		}
		if len(meta) > 0 {
			line += "  " + styles.MutedStyle.Render(strings.Join(meta, " · "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
