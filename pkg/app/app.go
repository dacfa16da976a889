package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/komik/pkg/app/screens"
	"github.com/kerbaras/komik/pkg/services"
)

type App struct {
	controller *services.MangaController
}

func NewApp(controller *services.MangaController) *App {
	return &App{controller: controller}
}

// Run blocks until the user quits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	model := screens.NewRootScreen(ctx, a.controller)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
