package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/integrations"
	"github.com/kerbaras/komik/pkg/logger"
	"github.com/kerbaras/komik/pkg/sources"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type ExportStatus string

const (
	StatusDownloading ExportStatus = "downloading"
	StatusProcessing  ExportStatus = "processing"
	StatusComplete    ExportStatus = "complete"
	StatusError       ExportStatus = "error"
)

// ExportProgress represents the progress of an export
type ExportProgress struct {
	ChapterID     string
	ChapterNumber string
	CurrentPage   int
	TotalPages    int
	Status        ExportStatus
	Path          string
	Error         error
}

// ExportOptions select the image host and optional page rewriting.
type ExportOptions struct {
	Quality   data.Quality
	Processor integrations.Processor
}

// DefaultExportWorkers is how many page images download at once.
const DefaultExportWorkers = 3

// Exporter downloads every page of a chapter and packs them into an EPUB.
type Exporter struct {
	source       sources.Source
	outputDir    string
	client       *http.Client
	limiter      *rate.Limiter
	workers      int
	log          *logger.Logger
	progressChan chan ExportProgress
	closeOnce    sync.Once
}

type ExporterOption func(*Exporter)

func WithExportHTTPClient(c *http.Client) ExporterOption {
	return func(e *Exporter) { e.client = c }
}

// WithExportRateLimit caps image requests per second. rps <= 0 disables it.
func WithExportRateLimit(rps float64, burst int) ExporterOption {
	return func(e *Exporter) {
		if rps <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(rate.Limit(rps), max(1, burst))
	}
}

func WithExportWorkers(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithExportLogger(l *logger.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

func NewExporter(source sources.Source, outputDir string, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		source:       source,
		outputDir:    outputDir,
		client:       &http.Client{Timeout: 60 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(2), 3),
		workers:      DefaultExportWorkers,
		log:          logger.Discard(),
		progressChan: make(chan ExportProgress, 100),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "exporter")
	return e
}

// Progress returns the channel progress updates are sent on. Updates are
// dropped when nobody keeps up with it.
func (e *Exporter) Progress() <-chan ExportProgress {
	return e.progressChan
}

// OutputDir is where finished EPUBs are written.
func (e *Exporter) OutputDir() string {
	return e.outputDir
}

// Export writes chapterID to an EPUB in the output directory and returns its path.
func (e *Exporter) Export(ctx context.Context, chapterID string, opts ExportOptions) (string, error) {
	path, err := e.export(ctx, chapterID, opts)
	if err != nil {
		e.log.Failure("export chapter", err, "id", chapterID)
		e.sendProgress(ExportProgress{ChapterID: chapterID, Status: StatusError, Error: err})
		return "", err
	}
	return path, nil
}

func (e *Exporter) export(ctx context.Context, chapterID string, opts ExportOptions) (string, error) {
	if opts.Quality == "" {
		opts.Quality = data.QualityHigh
	}

	chapter, err := e.source.GetChapter(ctx, chapterID)
	if err != nil {
		return "", fmt.Errorf("failed to load chapter: %w", err)
	}
	pages := chapter.Pages(opts.Quality)
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages found for chapter")
	}
	number := data.FormatChapterNumber(chapter.Number)

	progress := func(status ExportStatus, current int) ExportProgress {
		return ExportProgress{
			ChapterID:     chapter.ID,
			ChapterNumber: number,
			CurrentPage:   current,
			TotalPages:    len(pages),
			Status:        status,
		}
	}
	e.sendProgress(progress(StatusDownloading, 0))

	// Manga metadata only decorates the book.
	var manga *data.MangaDetail
	if chapter.MangaID != "" {
		manga, err = e.source.GetManga(ctx, chapter.MangaID)
		if err != nil {
			e.log.Warn("manga metadata unavailable", "manga", chapter.MangaID, "error", err)
			manga = nil
		}
	}

	builder := integrations.NewEPubBuilder(e.outputDir)
	var base *data.Manga
	if manga != nil {
		base = &manga.Manga
	}
	if err := builder.Init(base, chapter); err != nil {
		return "", fmt.Errorf("failed to initialize EPUB builder: %w", err)
	}
	defer builder.Abort()

	if manga != nil {
		builder.SetDescription(manga.Description)
		if manga.CoverURL != "" {
			if cover, err := e.fetch(ctx, manga.CoverURL); err == nil {
				builder.SetMangaCover(integrations.CoverData(cover))
			} else {
				e.log.Warn("cover download failed", "url", manga.CoverURL, "error", err)
			}
		}
	}
	if chapter.Thumbnail != "" {
		if cover, err := e.fetch(ctx, chapter.Thumbnail); err == nil {
			builder.SetChapterCover(integrations.CoverData(cover))
		} else {
			e.log.Warn("chapter thumbnail download failed", "url", chapter.Thumbnail, "error", err)
		}
	}

	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, page := range pages {
		g.Go(func() error {
			img, err := e.fetch(gctx, page.URL)
			if err != nil {
				return fmt.Errorf("failed to download page %d: %w", page.Index+1, err)
			}
			image := integrations.ImageData{Content: img.Content, ContentType: img.ContentType, Index: page.Index}
			if opts.Processor != nil {
				if image, err = opts.Processor.Process(image); err != nil {
					return fmt.Errorf("failed to process page %d: %w", page.Index+1, err)
				}
			}
			if err := builder.Next(image); err != nil {
				return fmt.Errorf("failed to add page %d to EPUB: %w", page.Index+1, err)
			}
			e.sendProgress(progress(StatusDownloading, int(done.Add(1))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	e.sendProgress(progress(StatusProcessing, len(pages)))
	path, err := builder.Done()
	if err != nil {
		return "", fmt.Errorf("failed to finalize EPUB: %w", err)
	}

	e.log.Info("chapter exported", "id", chapter.ID, "pages", len(pages), "path", path)
	complete := progress(StatusComplete, len(pages))
	complete.Path = path
	e.sendProgress(complete)
	return path, nil
}

type download struct {
	Content     []byte
	ContentType string
}

// fetch downloads one image, waiting on the rate limiter first.
func (e *Exporter) fetch(ctx context.Context, url string) (download, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return download{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return download{}, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return download{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return download{}, fmt.Errorf("bad status: %s", resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return download{}, fmt.Errorf("failed to read image content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return download{Content: content, ContentType: contentType}, nil
}

// sendProgress sends a progress update (non-blocking)
func (e *Exporter) sendProgress(progress ExportProgress) {
	select {
	case e.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close closes the progress channel. The exporter must not be used after.
func (e *Exporter) Close() {
	e.closeOnce.Do(func() { close(e.progressChan) })
}
