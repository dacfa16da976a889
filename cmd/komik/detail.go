package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/spf13/cobra"
)

var detailCmd = &cobra.Command{
	Use:   "detail [manga-id]",
	Short: "Show a manga's details",
	Long:  "Display the metadata of one manga",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		controller := cliController()
		defer controller.Close()

		loader := controller.Detail
		if err := loader.LoadDetail(cmd.Context(), id); err != nil {
			return fmt.Errorf("manga not found: %s: %w", id, err)
		}

		m := loader.Snapshot().Detail
		status := m.Status.String()

		lines := []string{
			styles.TitleStyle.Render("📖 " + m.Title),
		}
		if m.AltTitle != "" {
			lines = append(lines, styles.SubtitleStyle.Render(m.AltTitle))
		}
		lines = append(lines,
			fmt.Sprintf("%s • ★ %s • %s views • %s bookmarks",
				styles.StatusStyle(status).Render(status),
				format.Rating(m.Rating),
				format.Number(m.ViewCount),
				format.Number(m.BookmarkCount),
			),
		)
		for _, row := range [][2]string{
			{"Released", m.ReleaseYear},
			{"Author", strings.Join(m.Authors, ", ")},
			{"Artist", strings.Join(m.Artists, ", ")},
			{"Format", strings.Join(m.Formats, ", ")},
			{"Genres", strings.Join(m.Genres, ", ")},
		} {
			if row[1] != "" {
				lines = append(lines, styles.MutedStyle.Render(row[0]+": ")+row[1])
			}
		}
		if m.Description != "" {
			lines = append(lines, "", lipgloss.NewStyle().Width(80).Render(m.Description))
		}

		fmt.Println(styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		if m.LatestChapterID != "" {
			fmt.Printf("💡 Read the latest chapter with: komik read %s\n", m.LatestChapterID)
		}
		fmt.Printf("💡 List chapters with: komik chapters %s\n", m.ID)
		return nil
	},
}
