package services

import (
	"github.com/kerbaras/komik/pkg/api"
	"github.com/kerbaras/komik/pkg/config"
	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/integrations"
	"github.com/kerbaras/komik/pkg/logger"
	"github.com/kerbaras/komik/pkg/sources"
)

// MangaController owns one of each view-state holder, all sharing a single
// API client.
type MangaController struct {
	Source   sources.Source
	Catalog  *CatalogBrowser
	Detail   *DetailLoader
	Reader   *ChapterNavigator
	Exporter *Exporter

	// ExportDefaults apply to exports started from the TUI.
	ExportDefaults ExportOptions
	log            *logger.Logger
}

func NewMangaController(cfg *config.Config, log *logger.Logger) *MangaController {
	if log == nil {
		log = logger.Discard()
	}
	client := api.NewAPI(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		api.WithLogger(log),
	)
	return NewMangaControllerWithSource(sources.NewShinigami(client), cfg, log)
}

// NewMangaControllerWithSource wires the holders around an existing source.
func NewMangaControllerWithSource(source sources.Source, cfg *config.Config, log *logger.Logger) *MangaController {
	if log == nil {
		log = logger.Discard()
	}
	exporter := NewExporter(source, cfg.Export.Dir,
		WithExportWorkers(cfg.Export.Workers),
		WithExportRateLimit(cfg.Export.RateLimit, cfg.Export.Workers),
		WithExportLogger(log),
	)
	defaults := ExportOptions{Quality: data.ParseQuality(cfg.Reader.Quality)}
	if cfg.Export.Device != "" {
		if device, ok := integrations.LookupDevice(cfg.Export.Device); ok {
			defaults.Processor = integrations.NewImageProcessor(device.Settings())
		} else {
			log.Warn("unknown export device, pages are kept as-is", "device", cfg.Export.Device)
		}
	}
	return &MangaController{
		Source:         source,
		Catalog:        NewCatalogBrowser(source, log),
		Detail:         NewDetailLoader(source, log),
		Reader:         NewChapterNavigator(source, defaults.Quality, log),
		Exporter:       exporter,
		ExportDefaults: defaults,
		log:            log,
	}
}

// Close cancels every in-flight request.
func (c *MangaController) Close() {
	c.Catalog.Close()
	c.Detail.Close()
	c.Reader.Close()
	c.Exporter.Close()
}
