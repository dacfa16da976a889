package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/komik/pkg/app/components"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/kerbaras/komik/pkg/services"
)

type CatalogScreen struct {
	ctx         context.Context
	browser     *services.CatalogBrowser
	input       textinput.Model
	list        *components.MangaList
	spinner     spinner.Model
	loading     bool
	err         error
	recFormat   int
	recommended []data.Manga
	recErr      error
	width       int
	height      int
}

func NewCatalogScreen(ctx context.Context, browser *services.CatalogBrowser) *CatalogScreen {
	ti := textinput.New()
	ti.Placeholder = "Search manga..."
	ti.CharLimit = 100
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusDownloading

	return &CatalogScreen{
		ctx:     ctx,
		browser: browser,
		input:   ti,
		list:    components.NewMangaList(),
		spinner: sp,
	}
}

func (s *CatalogScreen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(
		s.load(func(ctx context.Context) error {
			return s.browser.LoadPage(ctx, 1, "", data.SortDesc)
		}),
		s.loadRecommended(),
		s.spinner.Tick,
	)
}

// Capturing reports whether keystrokes go to the search box.
func (s *CatalogScreen) Capturing() bool {
	return s.input.Focused()
}

func (s *CatalogScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.Width = msg.Width - 4
		s.list.Height = max(3, msg.Height-16)
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case catalogLoadedMsg:
		if stale(msg.err) {
			return s, nil
		}
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.list.SetMangas(s.browser.Snapshot().Items)
		}
		return s, nil

	case recommendedMsg:
		if msg.format == services.RecommendedFormats[s.recFormat] {
			s.recommended = msg.items
			s.recErr = msg.err
		}
		return s, nil

	case tea.KeyMsg:
		if s.input.Focused() {
			switch msg.String() {
			case "enter":
				s.input.Blur()
				return s, s.startLoad(func(ctx context.Context) error {
					return s.browser.Search(ctx, s.input.Value())
				})
			case "esc":
				s.input.Blur()
				return s, nil
			}
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}

		switch msg.String() {
		case "/":
			s.input.Focus()
			return s, textinput.Blink
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "enter":
			if selected := s.list.Selected(); selected != nil {
				id := selected.Manga.ID
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: ScreenDetails, Data: id}
				}
			}
		case "right", "l", "n":
			return s, s.startLoad(s.browser.NextPage)
		case "left", "h", "p":
			return s, s.startLoad(s.browser.PrevPage)
		case "s":
			return s, s.startLoad(s.browser.ToggleSort)
		case "r":
			return s, tea.Batch(s.startLoad(s.browser.Reload), s.loadRecommended())
		case "f":
			s.recFormat = (s.recFormat + 1) % len(services.RecommendedFormats)
			s.recommended = nil
			s.recErr = nil
			return s, s.loadRecommended()
		case "esc":
			if s.browser.Snapshot().Mode == services.ModeSearch {
				s.input.SetValue("")
				return s, s.startLoad(s.browser.ClearSearch)
			}
		}
	}

	return s, nil
}

func (s *CatalogScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	state := s.browser.Snapshot()

	header := styles.TitleStyle.Render("📚 Catalog")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	var status string
	if state.Mode == services.ModeSearch {
		status = fmt.Sprintf("Search %q · %s results", state.Query, format.Total(state.Total))
	} else {
		status = fmt.Sprintf("Latest updates (%s) · %s titles", state.SortOrder, format.Total(state.Total))
	}
	if state.TotalPages > 0 {
		status += fmt.Sprintf(" · page %d/%d", state.Page, state.TotalPages)
	}
	if s.loading {
		status = s.spinner.View() + " " + status
	}
	statusView := styles.SubtitleStyle.Render(status)

	var errorMsg string
	if s.err != nil && !errors.Is(s.err, services.ErrNoPage) {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n"
	}

	if state.Mode == services.ModeSearch {
		s.list.EmptyText = "No results found"
	} else {
		s.list.EmptyText = "No manga found"
	}

	help := styles.HelpStyle.Render(
		"/: search • enter: details • ←/h →/l: page • s: sort • f: format • r: refresh • esc: clear search • q: quit",
	)

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s\n%s",
		header,
		inputView,
		statusView,
		errorMsg,
		s.list.View(),
		s.renderRecommended(),
		help,
	)
}

func (s *CatalogScreen) renderRecommended() string {
	formatName := services.RecommendedFormats[s.recFormat]
	title := styles.SubtitleStyle.Render(fmt.Sprintf("Recommended %s", formatName))
	if s.recErr != nil {
		return title + " " + styles.StatusError.Render("unavailable")
	}
	if len(s.recommended) == 0 {
		return title + " " + styles.MutedStyle.Render("…")
	}
	names := make([]string, 0, len(s.recommended))
	for _, m := range s.recommended {
		names = append(names, m.Title)
	}
	line := strings.Join(names, " · ")
	if s.width > 20 {
		line = clip(line, s.width-20)
	}
	return title + " " + styles.MutedStyle.Render(line)
}

// Commands

func (s *CatalogScreen) startLoad(op func(context.Context) error) tea.Cmd {
	s.loading = true
	return tea.Batch(s.load(op), s.spinner.Tick)
}

func (s *CatalogScreen) load(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: op(s.ctx)}
	}
}

func (s *CatalogScreen) loadRecommended() tea.Cmd {
	formatName := services.RecommendedFormats[s.recFormat]
	return func() tea.Msg {
		items, err := s.browser.Recommended(s.ctx, formatName)
		return recommendedMsg{format: formatName, items: items, err: err}
	}
}
