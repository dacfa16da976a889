package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/services"
)

type ProgressTracker struct {
	exports map[string]*services.ExportProgress
	// last finished export, kept so the path stays on screen
	finished *services.ExportProgress
	width    int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		exports: make(map[string]*services.ExportProgress),
		width:   width,
	}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.ExportProgress) {
	key := progress.ChapterID
	if progress.Status == services.StatusComplete {
		delete(p.exports, key)
		prog := progress
		p.finished = &prog
		return
	}
	prog := progress // Copy
	p.exports[key] = &prog
}

func (p *ProgressTracker) Clear() {
	p.exports = make(map[string]*services.ExportProgress)
	p.finished = nil
}

func (p *ProgressTracker) HasActive() bool {
	for _, e := range p.exports {
		if e.Status != services.StatusError {
			return true
		}
	}
	return false
}

func (p *ProgressTracker) View() string {
	if len(p.exports) == 0 && p.finished == nil {
		return ""
	}

	var b strings.Builder
	if len(p.exports) > 0 {
		b.WriteString(styles.SubtitleStyle.Render("Exports"))
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(p.exports))
	for k := range p.exports {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		progress := p.exports[k]
		chapterText := fmt.Sprintf("Chapter %s", progress.ChapterNumber)
		if progress.ChapterNumber == "" {
			chapterText = "Loading chapter"
		}
		b.WriteString(styles.TextStyle.Render(chapterText))
		b.WriteString("\n")

		statusText := string(progress.Status)
		if progress.TotalPages > 0 {
			percentage := float64(progress.CurrentPage) / float64(progress.TotalPages) * 100
			statusText = fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Status, progress.CurrentPage, progress.TotalPages, percentage)

			b.WriteString(renderProgressBar(progress.CurrentPage, progress.TotalPages, p.width-4))
			b.WriteString("\n")
		}
		b.WriteString(styles.StatusStyle(string(progress.Status)).Render(statusText))
		b.WriteString("\n")

		if progress.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
			b.WriteString("\n")
		}
	}

	if p.finished != nil {
		b.WriteString(styles.StatusCompleted.Render(fmt.Sprintf("Saved %s", p.finished.Path)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styles.ProgressBarStyle.Render(bar)
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
