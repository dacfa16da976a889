package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/komik/pkg/app/components"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/services"
)

// minPageHeight is the smallest block a page is drawn in, borders included.
const minPageHeight = 6

// ReaderScreen scrolls through the pages of one chapter. Terminals cannot
// show the images themselves, so each page is a fixed-height block carrying
// its address; lazy pages are filled in once they come within a screen of
// the viewport.
type ReaderScreen struct {
	ctx       context.Context
	nav       *services.ChapterNavigator
	chapterID string

	viewport   viewport.Model
	spinner    spinner.Model
	loading    bool
	pageHeight int
	revealed   int

	filter  textinput.Model
	drawer  *components.ChapterList
	drawing bool

	width  int
	height int
}

func NewReaderScreen(ctx context.Context, nav *services.ChapterNavigator, chapterID string) *ReaderScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusDownloading

	ti := textinput.New()
	ti.Placeholder = "Filter by number or title..."
	ti.CharLimit = 50
	ti.Width = 40

	return &ReaderScreen{
		ctx:        ctx,
		nav:        nav,
		chapterID:  chapterID,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		pageHeight: minPageHeight,
		filter:     ti,
		drawer:     components.NewChapterList(),
	}
}

func (s *ReaderScreen) Init() tea.Cmd {
	return s.load(s.chapterID)
}

// Capturing reports whether the chapter drawer has the keyboard.
func (s *ReaderScreen) Capturing() bool {
	return s.drawing
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.viewport.Width = msg.Width
		s.viewport.Height = max(minPageHeight, msg.Height-8)
		s.pageHeight = max(minPageHeight, s.viewport.Height)
		s.drawer.Width = max(20, msg.Width/2)
		s.drawer.Height = max(3, msg.Height-14)
		s.render()
		return s, nil

	case spinner.TickMsg:
		if !s.loading && !s.nav.Drawer().Loading {
			return s, nil
		}
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case chapterLoadedMsg:
		if msg.id != s.chapterID || stale(msg.err) {
			return s, nil
		}
		s.loading = false
		s.revealed = data.EagerPages - 1
		s.viewport.GotoTop()
		s.render()
		s.observe()
		return s, nil

	case drawerLoadedMsg:
		if stale(msg.err) {
			return s, nil
		}
		s.refreshDrawer()
		return s, nil

	case tea.MouseMsg:
		if s.drawing {
			return s, nil
		}
		s.viewport, cmd = s.viewport.Update(msg)
		s.observe()
		return s, cmd

	case tea.KeyMsg:
		if s.drawing {
			return s, s.updateDrawer(msg)
		}

		switch msg.String() {
		case "left", "h":
			if id, ok := s.nav.Prev(); ok {
				return s, s.load(id)
			}
			return s, nil
		case "right", "l":
			if id, ok := s.nav.Next(); ok {
				return s, s.load(id)
			}
			return s, nil
		case "t":
			s.nav.ToggleQuality()
			s.render()
			return s, nil
		case "c":
			return s, s.openDrawer()
		case "e":
			if id := s.nav.ChapterID(); id != "" {
				return s, func() tea.Msg { return ExportMsg{ChapterID: id} }
			}
			return s, nil
		case "r":
			return s, s.load(s.chapterID)
		case "esc", "backspace":
			target := s.nav.BackTarget()
			return s, func() tea.Msg {
				if target == "" {
					return SwitchScreenMsg{Screen: ScreenCatalog}
				}
				return SwitchScreenMsg{Screen: ScreenDetails, Data: target}
			}
		}

		s.viewport, cmd = s.viewport.Update(msg)
		s.observe()
		return s, cmd
	}

	return s, nil
}

func (s *ReaderScreen) updateDrawer(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.closeDrawer()
		return nil
	case "up", "ctrl+p":
		s.drawer.Prev()
		return nil
	case "down", "ctrl+n":
		s.drawer.Next()
		return nil
	case "tab":
		s.nav.SetDrawerSort(s.nav.Drawer().SortOrder.Toggle())
		s.drawer.SelectedIndex = 0
		s.refreshDrawer()
		return nil
	case "enter":
		ch := s.drawer.Selected()
		if ch == nil {
			return nil
		}
		s.closeDrawer()
		return s.load(ch.ID)
	}

	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	if s.filter.Value() != s.nav.Drawer().Query {
		s.nav.SetFilter(s.filter.Value())
		s.drawer.SelectedIndex = 0
		s.refreshDrawer()
	}
	return cmd
}

func (s *ReaderScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	snap := s.nav.Snapshot()
	switch {
	case snap.State == services.NavError:
		return fmt.Sprintf("%s\n%s\n%s",
			styles.TitleStyle.Render("📕 Chapter not found"),
			styles.StatusError.Render(fmt.Sprintf("Error: %s", snap.Err)),
			styles.HelpStyle.Render("r: retry • esc: back • q: quit"),
		)
	case snap.State != services.NavReady || snap.Content == nil:
		return fmt.Sprintf("%s Loading chapter...", s.spinner.View())
	}

	body := s.viewport.View()
	if s.drawing {
		body = lipgloss.JoinHorizontal(lipgloss.Top, s.renderDrawer(), " ", body)
	}

	return fmt.Sprintf("%s\n%s\n%s", s.renderHeader(snap), body, s.renderFooter(snap))
}

func (s *ReaderScreen) renderHeader(snap services.ReaderSnapshot) string {
	title := styles.TitleStyle.UnsetMarginBottom().Render("📖 " + snap.Content.DisplayTitle())
	badge := styles.BadgeStyle.Render(snap.Quality.Label())
	label := styles.MutedStyle.Render(snap.Label)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge, "  ", label)
}

func (s *ReaderScreen) renderFooter(snap services.ReaderSnapshot) string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Button("← Prev", snap.CanPrev),
		" ",
		styles.Button("Chapters", true),
		" ",
		styles.Button("Next →", snap.CanNext),
	)
	help := styles.HelpStyle.UnsetMarginTop().Render(
		"↑/k ↓/j: scroll • ←/h →/l: chapter • t: quality • c: chapters • e: export • esc: back • q: quit",
	)
	return buttons + "\n" + help
}

func (s *ReaderScreen) renderDrawer() string {
	d := s.nav.Drawer()

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Chapters (%d/%d, %s)", len(d.Chapters), d.Total, d.SortOrder)))
	b.WriteString("\n")
	b.WriteString(s.filter.View())
	b.WriteString("\n")
	switch {
	case d.Loading:
		b.WriteString(s.spinner.View() + " Loading chapters...")
	case d.Err != nil:
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", d.Err)))
	default:
		b.WriteString(s.drawer.View())
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("enter: open • tab: sort • esc: close"))

	return styles.DrawerStyle.Width(s.drawer.Width).Render(b.String())
}

// render rebuilds the page blocks for the current quality and position.
func (s *ReaderScreen) render() {
	snap := s.nav.Snapshot()
	pages, current := snap.Pages, snap.Current
	if len(pages) == 0 {
		s.viewport.SetContent("")
		return
	}

	inner := max(1, s.viewport.Width-6)
	blocks := make([]string, len(pages))
	for i, p := range pages {
		lines := []string{fmt.Sprintf("Page %d", p.Index+1)}
		if p.Loading == data.LoadEager || p.Index <= s.revealed {
			lines = append(lines, clip(p.URL, inner))
		} else {
			lines = append(lines, styles.MutedStyle.Render("◌ loads when scrolled into view"))
		}
		lines = append(lines, styles.MutedStyle.Render(string(p.Loading)))

		style := styles.PageStyle
		if i == current {
			style = styles.CurrentPageStyle
		}
		blocks[i] = style.
			Width(max(1, s.viewport.Width-4)).
			Height(s.pageHeight - 2).
			MaxHeight(s.pageHeight).
			Render(strings.Join(lines, "\n"))
	}
	s.viewport.SetContent(strings.Join(blocks, "\n"))
}

// observe reports every page's visible share to the navigator, bottom page
// first so the topmost page past the threshold ends up current, and reveals
// lazy pages within a screen of the viewport.
func (s *ReaderScreen) observe() {
	n := len(s.nav.Pages())
	if n == 0 {
		return
	}
	before := s.nav.CurrentPage()
	ratios := visibleRatios(s.viewport.YOffset, s.viewport.Height, s.pageHeight, n)
	for i := len(ratios) - 1; i >= 0; i-- {
		s.nav.ObservePage(i, ratios[i])
	}

	reveal := min(n-1, (s.viewport.YOffset+2*s.viewport.Height)/s.pageHeight)
	if reveal > s.revealed || s.nav.CurrentPage() != before {
		s.revealed = max(s.revealed, reveal)
		s.render()
	}
}

// closeDrawer hides the drawer and drops its filter.
func (s *ReaderScreen) closeDrawer() {
	s.drawing = false
	s.filter.Blur()
	s.filter.SetValue("")
	s.nav.SetFilter("")
	s.nav.CloseDrawer()
}

func (s *ReaderScreen) refreshDrawer() {
	d := s.nav.Drawer()
	s.drawer.Current = s.nav.ChapterID()
	s.drawer.SetItems(d.Chapters)
}

// Commands

func (s *ReaderScreen) load(id string) tea.Cmd {
	s.chapterID = id
	s.loading = true
	return tea.Batch(func() tea.Msg {
		return chapterLoadedMsg{id: id, err: s.nav.Load(s.ctx, id)}
	}, s.spinner.Tick)
}

func (s *ReaderScreen) openDrawer() tea.Cmd {
	s.drawing = true
	s.filter.SetValue(s.nav.Drawer().Query)
	s.filter.Focus()
	s.refreshDrawer()
	return tea.Batch(textinput.Blink, s.spinner.Tick, func() tea.Msg {
		return drawerLoadedMsg{err: s.nav.OpenDrawer(s.ctx)}
	})
}

// visibleRatios returns, for each of n stacked blocks of blockHeight lines,
// the share of the block inside the window [yOffset, yOffset+viewHeight).
func visibleRatios(yOffset, viewHeight, blockHeight, n int) []float64 {
	ratios := make([]float64, n)
	if blockHeight <= 0 {
		return ratios
	}
	bottom := yOffset + viewHeight
	for i := range ratios {
		top := i * blockHeight
		overlap := min(top+blockHeight, bottom) - max(top, yOffset)
		if overlap > 0 {
			ratios[i] = float64(overlap) / float64(blockHeight)
		}
	}
	return ratios
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
