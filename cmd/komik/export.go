package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/kerbaras/komik/pkg/app/components"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/format"
	"github.com/kerbaras/komik/pkg/integrations"
	"github.com/kerbaras/komik/pkg/services"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [chapter-id]",
	Short: "Export a chapter to EPUB",
	Long: `Download every page of a chapter and pack them into an EPUB.

Pages can be resized and recoloured for an e-reader with --device, or by hand
with --max-width, --max-height and --grayscale.

Examples:
  komik export <chapter-id>
  komik export <chapter-id> --device kindle-paperwhite
  komik export <chapter-id> --quality low --grayscale --max-width 1072 -o ~/Books

Use 'komik export --list-devices' to see all supported devices.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listDevices, _ := cmd.Flags().GetBool("list-devices"); listDevices {
			printDeviceList()
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("chapter id is required (use --list-devices to see supported devices)")
		}

		flags := cmd.Flags()
		if output, _ := flags.GetString("output"); output != "" {
			cfg.Export.Dir = output
		}
		if device, _ := flags.GetString("device"); device != "" {
			if _, ok := integrations.LookupDevice(device); !ok {
				return fmt.Errorf("unknown device: %s. Use --list-devices to see available options", device)
			}
			cfg.Export.Device = device
		}
		if workers, _ := flags.GetInt("workers"); workers > 0 {
			cfg.Export.Workers = workers
		}

		controller := cliController()
		defer controller.Close()

		opts := controller.ExportDefaults
		if quality, _ := flags.GetString("quality"); quality != "" {
			opts.Quality = data.ParseQuality(quality)
		}
		if flags.Changed("grayscale") || flags.Changed("max-width") || flags.Changed("max-height") {
			settings := integrations.DefaultImageSettings()
			if device, ok := integrations.LookupDevice(cfg.Export.Device); ok {
				settings = device.Settings()
			}
			if flags.Changed("grayscale") {
				settings.Grayscale, _ = flags.GetBool("grayscale")
			}
			if flags.Changed("max-width") {
				settings.MaxWidth, _ = flags.GetInt("max-width")
			}
			if flags.Changed("max-height") {
				settings.MaxHeight, _ = flags.GetInt("max-height")
			}
			opts.Processor = integrations.NewImageProcessor(settings)
		}

		exporter := controller.Exporter

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for progress := range exporter.Progress() {
				printProgress(progress)
			}
		}()

		fmt.Printf("📥 Exporting chapter %s (%s quality)\n", args[0], opts.Quality)
		path, err := exporter.Export(cmd.Context(), args[0], opts)
		exporter.Close()
		wg.Wait()
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		size := ""
		if info, err := os.Stat(path); err == nil {
			size = " (" + format.Size(info.Size()) + ")"
		}
		fmt.Printf("\n📖 EPUB created: %s%s\n", path, size)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("quality", "q", "", "Image quality: high or low (default from config)")
	exportCmd.Flags().StringP("device", "d", "", "Optimize pages for an e-reader")
	exportCmd.Flags().Bool("grayscale", false, "Convert pages to grayscale")
	exportCmd.Flags().Int("max-width", 0, "Downscale pages wider than this (0 = keep)")
	exportCmd.Flags().Int("max-height", 0, "Downscale pages taller than this (0 = keep)")
	exportCmd.Flags().StringP("output", "o", "", "Output directory (default from config)")
	exportCmd.Flags().IntP("workers", "w", 0, "Concurrent page downloads (default from config)")
	exportCmd.Flags().Bool("list-devices", false, "List all supported devices")
}

func printProgress(p services.ExportProgress) {
	switch p.Status {
	case services.StatusDownloading:
		if p.TotalPages > 0 {
			fmt.Printf("\r  Chapter %s %s %d/%d pages", p.ChapterNumber,
				components.SimpleProgress(p.CurrentPage, p.TotalPages, 30), p.CurrentPage, p.TotalPages)
		}
	case services.StatusProcessing:
		fmt.Printf("\n  Chapter %s: packing EPUB...", p.ChapterNumber)
	case services.StatusError:
		fmt.Printf("\n  ❌ %v", p.Error)
	}
}

func printDeviceList() {
	fmt.Println("📱 Supported devices:")
	for _, id := range integrations.DeviceIDs() {
		d := integrations.Devices[id]
		kind := "color"
		if d.Grayscale {
			kind = "e-ink"
		}
		fmt.Printf("  %-20s - %s (%dx%d, %d DPI, %s)\n", id, d.Name, d.Width, d.Height, d.DPI, kind)
	}
}
