package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/kerbaras/komik/pkg/services"
	"github.com/spf13/cobra"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters [manga-id]",
	Short: "List a manga's chapters",
	Long: `List the chapters of a manga one page at a time, or every chapter at once.

Examples:
  komik chapters <manga-id> --page 2
  komik chapters <manga-id> --all --filter 69
  komik chapters <manga-id> --all --filter "final battle" --order asc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("page-size")
		order, _ := cmd.Flags().GetString("order")
		all, _ := cmd.Flags().GetBool("all")
		filter, _ := cmd.Flags().GetString("filter")

		controller := cliController()
		defer controller.Close()

		sortOrder := data.ParseSortOrder(order)

		var (
			chapters []data.ChapterSummary
			heading  string
		)
		if all || filter != "" {
			everything, err := services.LoadAllChapters(cmd.Context(), controller.Source, id, sortOrder)
			if err != nil {
				return fmt.Errorf("failed to load chapters: %w", err)
			}
			chapters = services.FilterChapters(everything, filter, sortOrder)
			heading = fmt.Sprintf("%d of %d chapters", len(chapters), len(everything))
		} else {
			loader := controller.Detail
			if err := loader.LoadChapterPage(cmd.Context(), id, page, size, "chapter_number", sortOrder); err != nil {
				return fmt.Errorf("failed to load chapters: %w", err)
			}
			snap := loader.Snapshot()
			chapters = snap.Chapters
			heading = fmt.Sprintf("page %d/%d, %s chapters", snap.ChapterPage, snap.ChapterPages, format.Total(snap.ChapterTotal))
		}

		if len(chapters) == 0 {
			fmt.Println("No chapters found.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		now := time.Now()
		t := table.New().
			Border(lipgloss.HiddenBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("Chapter", "Title", "Views", "Released", "ID")
		for _, ch := range chapters {
			t.Row(
				format.ChapterNumber(ch.Number),
				truncateString(ch.Title, 40),
				format.Number(ch.ViewCount),
				format.RelativeDate(ch.ReleaseDate, now),
				ch.ID,
			)
		}

		fmt.Printf("📑 %s (%s)\n", heading, sortOrder)
		fmt.Println(t)
		return nil
	},
}

func init() {
	chaptersCmd.Flags().IntP("page", "p", 1, "Page number")
	chaptersCmd.Flags().Int("page-size", services.ChapterPageSize, "Chapters per page")
	chaptersCmd.Flags().StringP("order", "o", "desc", "Sort order: asc or desc")
	chaptersCmd.Flags().BoolP("all", "a", false, "Load every chapter")
	chaptersCmd.Flags().StringP("filter", "f", "", "Filter by chapter number or title words (implies --all)")
}
