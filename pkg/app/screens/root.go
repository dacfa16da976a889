package screens

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/komik/pkg/app/components"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/services"
)

type screen interface {
	tea.Model
	// Capturing is true while the screen takes free text, so "q" is typed
	// rather than quitting.
	Capturing() bool
}

type RootScreen struct {
	ctx        context.Context
	controller *services.MangaController

	current string
	catalog *CatalogScreen
	details *DetailsScreen
	reader  *ReaderScreen

	progress *components.ProgressTracker
	size     tea.WindowSizeMsg
}

func NewRootScreen(ctx context.Context, controller *services.MangaController) *RootScreen {
	return &RootScreen{
		ctx:        ctx,
		controller: controller,
		current:    ScreenCatalog,
		catalog:    NewCatalogScreen(ctx, controller.Catalog),
		progress:   components.NewProgressTracker(80),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(r.catalog.Init(), r.listenForProgress)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.size = msg
		r.progress.SetWidth(msg.Width - 4)
		inner := r.innerSize()
		var cmds []tea.Cmd
		for _, s := range r.screens() {
			_, cmd := s.Update(inner)
			cmds = append(cmds, cmd)
		}
		return r, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			if !r.active().Capturing() {
				return r, tea.Quit
			}
		}

	case SwitchScreenMsg:
		return r, r.switchTo(msg)

	case ExportMsg:
		return r, r.export(msg.ChapterID)

	case exportProgressMsg:
		r.progress.Update(services.ExportProgress(msg))
		return r, r.listenForProgress

	case exportDoneMsg:
		if msg.err != nil {
			r.progress.Update(services.ExportProgress{
				ChapterID: msg.chapterID,
				Status:    services.StatusError,
				Error:     msg.err,
			})
		}
		return r, nil

	case catalogLoadedMsg, recommendedMsg:
		_, cmd := r.catalog.Update(msg)
		return r, cmd

	case detailLoadedMsg, chaptersLoadedMsg:
		if r.details == nil {
			return r, nil
		}
		_, cmd := r.details.Update(msg)
		return r, cmd

	case chapterLoadedMsg, drawerLoadedMsg:
		if r.reader == nil {
			return r, nil
		}
		_, cmd := r.reader.Update(msg)
		return r, cmd

	case tea.MouseMsg:
		// handled below by the active screen
	default:
		// spinner ticks and cursor blinks carry their owner's id
		var cmds []tea.Cmd
		for _, s := range r.screens() {
			_, cmd := s.Update(msg)
			cmds = append(cmds, cmd)
		}
		return r, tea.Batch(cmds...)
	}

	_, cmd := r.active().Update(msg)
	return r, cmd
}

func (r *RootScreen) View() string {
	var b strings.Builder
	b.WriteString(r.renderBreadcrumb())
	b.WriteString("\n\n")
	b.WriteString(r.active().View())
	if view := r.progress.View(); view != "" {
		b.WriteString("\n")
		b.WriteString(view)
	}
	return b.String()
}

func (r *RootScreen) renderBreadcrumb() string {
	crumbs := []string{ScreenCatalog}
	switch r.current {
	case ScreenDetails:
		crumbs = append(crumbs, ScreenDetails)
	case ScreenReader:
		if r.details != nil {
			crumbs = append(crumbs, ScreenDetails)
		}
		crumbs = append(crumbs, ScreenReader)
	}

	tabs := make([]string, len(crumbs))
	for i, c := range crumbs {
		label := strings.ToUpper(c[:1]) + c[1:]
		if c == r.current {
			tabs[i] = styles.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(label)
		}
	}
	return strings.Join(tabs, styles.MutedStyle.Render("›"))
}

func (r *RootScreen) switchTo(msg SwitchScreenMsg) tea.Cmd {
	switch msg.Screen {
	case ScreenCatalog:
		r.current = ScreenCatalog
		return nil

	case ScreenDetails:
		r.current = ScreenDetails
		if r.details != nil && r.details.mangaID == msg.Data {
			return nil
		}
		r.details = NewDetailsScreen(r.ctx, r.controller.Detail, msg.Data)
		r.details.Update(r.innerSize())
		return r.details.Init()

	case ScreenReader:
		r.current = ScreenReader
		r.reader = NewReaderScreen(r.ctx, r.controller.Reader, msg.Data)
		r.reader.Update(r.innerSize())
		return r.reader.Init()
	}
	return nil
}

func (r *RootScreen) active() screen {
	switch r.current {
	case ScreenDetails:
		if r.details != nil {
			return r.details
		}
	case ScreenReader:
		if r.reader != nil {
			return r.reader
		}
	}
	return r.catalog
}

func (r *RootScreen) screens() []screen {
	out := []screen{r.catalog}
	if r.details != nil {
		out = append(out, r.details)
	}
	if r.reader != nil {
		out = append(out, r.reader)
	}
	return out
}

// innerSize leaves room for the breadcrumb and the export panel.
func (r *RootScreen) innerSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: r.size.Width, Height: max(0, r.size.Height-6)}
}

// Commands

func (r *RootScreen) export(chapterID string) tea.Cmd {
	r.progress.Update(services.ExportProgress{ChapterID: chapterID, Status: services.StatusDownloading})
	opts := r.controller.ExportDefaults
	return func() tea.Msg {
		path, err := r.controller.Exporter.Export(r.ctx, chapterID, opts)
		return exportDoneMsg{chapterID: chapterID, path: path, err: err}
	}
}

func (r *RootScreen) listenForProgress() tea.Msg {
	progress, ok := <-r.controller.Exporter.Progress()
	if !ok {
		return nil
	}
	return exportProgressMsg(progress)
}
