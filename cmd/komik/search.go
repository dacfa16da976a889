package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/kerbaras/komik/pkg/services"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for manga",
	Long:  "Search the catalog by title and display results in a table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		page, _ := cmd.Flags().GetInt("page")

		controller := cliController()
		defer controller.Close()

		browser := controller.Catalog
		if err := browser.LoadPage(cmd.Context(), page, query, data.SortDesc); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		state := browser.Snapshot()
		if len(state.Items) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		var (
			purple = lipgloss.Color("99")

			headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(purple)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				default:
					return cellStyle
				}
			}).
			Headers("#", "Title", "Rating", "Latest", "ID")

		offset := (state.Page - 1) * services.CatalogPageSize
		for i, manga := range state.Items {
			t.Row(
				fmt.Sprintf("%d", offset+i+1),
				truncateString(manga.Title, 58),
				format.Rating(manga.Rating),
				format.ChapterNumber(manga.LatestChapterNumber),
				manga.ID,
			)
		}

		fmt.Printf("🔍 %s results for %q (page %d/%d)\n", format.Total(state.Total), query, state.Page, state.TotalPages)
		fmt.Println(t)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("page", "p", 1, "Page number")
}
