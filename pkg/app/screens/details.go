package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/komik/pkg/app/components"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/kerbaras/komik/pkg/services"
)

type DetailsScreen struct {
	ctx      context.Context
	loader   *services.DetailLoader
	mangaID  string
	chapters *components.ChapterList
	spinner  spinner.Model
	loading  bool
	err      error
	width    int
	height   int
}

func NewDetailsScreen(ctx context.Context, loader *services.DetailLoader, mangaID string) *DetailsScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusDownloading

	return &DetailsScreen{
		ctx:      ctx,
		loader:   loader,
		mangaID:  mangaID,
		chapters: components.NewChapterList(),
		spinner:  sp,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(
		s.loadDetail,
		s.loadChapters(func(ctx context.Context) error {
			return s.loader.LoadChapterPage(ctx, s.mangaID, 1, services.ChapterPageSize, "chapter_number", data.SortDesc)
		}),
		s.spinner.Tick,
	)
}

func (s *DetailsScreen) Capturing() bool { return false }

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.chapters.Width = msg.Width - 4
		s.chapters.Height = max(3, msg.Height-20)
		return s, nil

	case spinner.TickMsg:
		if !s.loading && !s.loader.Snapshot().ChaptersLoading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case detailLoadedMsg:
		if msg.id != s.mangaID || stale(msg.err) {
			return s, nil
		}
		s.loading = false
		return s, nil

	case chaptersLoadedMsg:
		if msg.id != s.mangaID || stale(msg.err) {
			return s, nil
		}
		s.err = msg.err
		if msg.err == nil {
			s.chapters.SetItems(s.loader.Snapshot().Chapters)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.chapters.Prev()
		case "down", "j":
			s.chapters.Next()
		case "right", "l", "n":
			page := s.loader.Snapshot().ChapterPage + 1
			return s, s.loadChapters(func(ctx context.Context) error {
				return s.loader.ChapterPage(ctx, page)
			})
		case "left", "h", "p":
			page := s.loader.Snapshot().ChapterPage - 1
			return s, s.loadChapters(func(ctx context.Context) error {
				return s.loader.ChapterPage(ctx, page)
			})
		case "s":
			s.chapters.SelectedIndex = 0
			return s, s.loadChapters(s.loader.ToggleSort)
		case "r":
			return s, s.Init()
		case "enter":
			if ch := s.chapters.Selected(); ch != nil {
				id := ch.ID
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: ScreenReader, Data: id}
				}
			}
		case "e":
			if ch := s.chapters.Selected(); ch != nil {
				id := ch.ID
				return s, func() tea.Msg { return ExportMsg{ChapterID: id} }
			}
		case "esc", "backspace":
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: ScreenCatalog}
			}
		}
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	snap := s.loader.Snapshot()
	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: read • ←/h →/l: page • s: sort • e: export EPUB • r: refresh • esc: back • q: quit",
	)

	switch snap.State {
	case services.DetailLoading, services.DetailIdle:
		return fmt.Sprintf("%s Loading manga...\n%s", s.spinner.View(), help)
	case services.DetailNotFound:
		return fmt.Sprintf("%s\n%s\n%s",
			styles.TitleStyle.Render("📖 Manga not found"),
			styles.MutedStyle.Render("The title may have been removed or the server could not be reached."),
			help,
		)
	}

	detail := snap.Detail
	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", detail.Title))

	var errorMsg string
	if s.err != nil && !errors.Is(s.err, services.ErrNoPage) {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s%s\n%s",
		header,
		s.renderMangaInfo(detail),
		errorMsg,
		s.renderChapters(snap),
		help,
	)
}

func (s *DetailsScreen) renderMangaInfo(m *data.MangaDetail) string {
	status := m.Status.String()

	desc := strings.TrimSpace(m.Description)
	if r := []rune(desc); len(r) > 280 {
		desc = string(r[:277]) + "..."
	}

	facts := []string{
		styles.StatusStyle(status).Render(status),
		fmt.Sprintf("★ %s", format.Rating(m.Rating)),
		fmt.Sprintf("%s views", format.Number(m.ViewCount)),
		fmt.Sprintf("%s bookmarks", format.Number(m.BookmarkCount)),
	}
	if m.ReleaseYear != "" {
		facts = append(facts, m.ReleaseYear)
	}

	lines := []string{}
	if m.AltTitle != "" {
		lines = append(lines, styles.SubtitleStyle.Render(m.AltTitle))
	}
	lines = append(lines, strings.Join(facts, styles.MutedStyle.Render(" • ")))
	if len(m.Authors) > 0 {
		lines = append(lines, styles.MutedStyle.Render("Author: "+strings.Join(m.Authors, ", ")))
	}
	if len(m.Artists) > 0 {
		lines = append(lines, styles.MutedStyle.Render("Artist: "+strings.Join(m.Artists, ", ")))
	}
	if len(m.Genres) > 0 {
		lines = append(lines, styles.MutedStyle.Render("Genres: "+strings.Join(m.Genres, ", ")))
	}
	if desc != "" {
		lines = append(lines, "", styles.TextStyle.Render(desc))
	}

	return styles.CardStyle.Width(max(20, s.width-4)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *DetailsScreen) renderChapters(snap services.DetailSnapshot) string {
	title := fmt.Sprintf("Chapters (%s total, %s)", format.Total(snap.ChapterTotal), snap.SortOrder)
	if snap.ChapterPages > 0 {
		title += fmt.Sprintf(" · page %d/%d", snap.ChapterPage, snap.ChapterPages)
	}
	if snap.ChaptersLoading {
		title = s.spinner.View() + " " + title
	}
	return styles.SubtitleStyle.Render(title) + "\n" + s.chapters.View()
}

// Commands

func (s *DetailsScreen) loadDetail() tea.Msg {
	return detailLoadedMsg{id: s.mangaID, err: s.loader.LoadDetail(s.ctx, s.mangaID)}
}

func (s *DetailsScreen) loadChapters(op func(context.Context) error) tea.Cmd {
	id := s.mangaID
	return tea.Batch(func() tea.Msg {
		return chaptersLoadedMsg{id: id, err: op(s.ctx)}
	}, s.spinner.Tick)
}
