package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kerbaras/komik/pkg/app"
	"github.com/kerbaras/komik/pkg/config"
	"github.com/kerbaras/komik/pkg/logger"
	"github.com/kerbaras/komik/pkg/services"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "komik",
	Short: "A terminal manga reader",
	Long:  "Browse, read and export manga from the Shinigami API with a TUI and CLI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so logs go to a file.
		file, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer file.Close()

		log := newLogger(file)
		controller := services.NewMangaController(cfg, log)
		defer controller.Close()

		log.Info("starting tui", "base_url", cfg.API.BaseURL)
		return app.NewApp(controller).Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yml or ~/.komik/config.yml)")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	cobra.CheckErr(v.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url")))
	cobra.CheckErr(v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(exportCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newLogger(w io.Writer) *logger.Logger {
	return logger.New(logger.Config{
		Writer: w,
		Format: cfg.Log.Format,
		Level:  logger.ParseLevel(cfg.Log.Level),
	})
}

// cliController wires a controller that logs to stderr.
func cliController() *services.MangaController {
	return services.NewMangaController(cfg, newLogger(os.Stderr))
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
