package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/kerbaras/komik/pkg/services"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest updated manga",
	Long:  "Display one page of the latest-updated catalog in a formatted table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		order, _ := cmd.Flags().GetString("order")

		controller := cliController()
		defer controller.Close()

		browser := controller.Catalog
		if err := browser.LoadPage(cmd.Context(), page, "", data.ParseSortOrder(order)); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		state := browser.Snapshot()
		if len(state.Items) == 0 {
			fmt.Println("📚 No manga found.")
			return nil
		}

		fmt.Printf("\n📚 Latest updates (page %d/%d, %s titles)\n\n", state.Page, state.TotalPages, format.Total(state.Total))
		fmt.Println(catalogTable(state).View())
		return nil
	},
}

func init() {
	listCmd.Flags().IntP("page", "p", 1, "Page number")
	listCmd.Flags().StringP("order", "o", "desc", "Sort order: asc or desc")
}

func catalogTable(state services.CatalogState) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Title", Width: 40},
		{Title: "Rating", Width: 6},
		{Title: "Views", Width: 8},
		{Title: "Latest", Width: 8},
		{Title: "Updated", Width: 14},
	}

	now := time.Now()
	rows := []table.Row{}
	for _, m := range state.Items {
		rows = append(rows, table.Row{
			m.ID,
			truncateString(m.Title, 38),
			format.Rating(m.Rating),
			format.Number(m.ViewCount),
			format.ChapterNumber(m.LatestChapterNumber),
			format.RelativeDate(m.LatestChapterTime, now),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}
