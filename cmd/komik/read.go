package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/komik/pkg/app/styles"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [chapter-id]",
	Short: "Resolve a chapter's page images",
	Long:  "Load one chapter and print its page image URLs with their neighbours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quality, _ := cmd.Flags().GetString("quality")

		controller := cliController()
		defer controller.Close()

		nav := controller.Reader
		if quality != "" && data.ParseQuality(quality) != nav.Quality() {
			nav.ToggleQuality()
		}
		if err := nav.Load(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("chapter not found: %s: %w", args[0], err)
		}

		content := nav.Content()
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Center,
			styles.TitleStyle.UnsetMarginBottom().Render("📖 "+content.DisplayTitle()),
			" ",
			styles.BadgeStyle.Render(nav.Quality().Label()),
		))

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			Headers("#", "Load", "URL")
		for _, page := range nav.Pages() {
			t.Row(fmt.Sprintf("%d", page.Index+1), string(page.Loading), page.URL)
		}
		fmt.Println(t)

		if id, ok := nav.Prev(); ok {
			fmt.Printf("← previous: komik read %s\n", id)
		}
		if id, ok := nav.Next(); ok {
			fmt.Printf("→ next:     komik read %s\n", id)
		}
		return nil
	},
}

func init() {
	readCmd.Flags().StringP("quality", "q", "", "Image quality: high or low (default from config)")
}
