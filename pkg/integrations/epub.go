package integrations

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/komik/pkg/data"
)

var ErrNotInitialized = errors.New("epub builder not initialized")

// EPubBuilder streams the pages of one chapter into an EPUB file. Pages may
// arrive in any order; they are laid out by index when the book is written.
type EPubBuilder struct {
	outputDir string

	mu           sync.Mutex
	book         *epub.Epub
	workDir      string
	fileName     string
	sectionTitle string
	mangaCover   *CoverData
	chapterCover *CoverData
	pages        map[int]string
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir}
}

// Init starts a new book for chapter. manga may be nil, in which case the
// book is titled after the chapter alone.
func (b *EPubBuilder) Init(manga *data.Manga, chapter *data.ChapterContent) error {
	if chapter == nil {
		return fmt.Errorf("chapter cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup()

	sectionTitle := chapter.DisplayTitle()
	title := sectionTitle
	if manga != nil && manga.Title != "" {
		title = fmt.Sprintf("%s - %s", manga.Title, sectionTitle)
	}

	book, err := epub.NewEpub(title)
	if err != nil {
		return fmt.Errorf("failed to create EPub: %w", err)
	}
	book.SetLang("id")
	book.SetAuthor("Shinigami")

	workDir, err := os.MkdirTemp("", "komik-epub-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	b.book = book
	b.workDir = workDir
	b.fileName = sanitizeFilename(title) + ".epub"
	b.sectionTitle = sectionTitle
	b.pages = make(map[int]string)
	return nil
}

// SetDescription sets the book description.
func (b *EPubBuilder) SetDescription(description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.book == nil {
		return ErrNotInitialized
	}
	if description != "" {
		b.book.SetDescription(description)
	}
	return nil
}

// SetMangaCover sets the cover used when no chapter cover is given.
func (b *EPubBuilder) SetMangaCover(cover CoverData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.book == nil {
		return ErrNotInitialized
	}
	if len(cover.Content) == 0 {
		return fmt.Errorf("cover image is empty")
	}
	b.mangaCover = &cover
	return nil
}

// SetChapterCover sets a chapter-specific cover. It wins over the manga cover.
func (b *EPubBuilder) SetChapterCover(cover CoverData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.book == nil {
		return ErrNotInitialized
	}
	if len(cover.Content) == 0 {
		return fmt.Errorf("cover image is empty")
	}
	b.chapterCover = &cover
	return nil
}

// Next adds one page image to the book.
func (b *EPubBuilder) Next(img ImageData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.book == nil {
		return ErrNotInitialized
	}
	if len(img.Content) == 0 {
		return fmt.Errorf("page %d is empty", img.Index)
	}
	if _, ok := b.pages[img.Index]; ok {
		return fmt.Errorf("page %d added twice", img.Index)
	}

	name := fmt.Sprintf("page-%04d%s", img.Index+1, extensionFor(img.ContentType))
	internal, err := b.addImage(name, img.Content)
	if err != nil {
		return fmt.Errorf("failed to add page %d: %w", img.Index, err)
	}
	b.pages[img.Index] = internal
	return nil
}

// Pages is the number of pages added so far.
func (b *EPubBuilder) Pages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pages)
}

// Done writes the book to the output directory and returns its path.
func (b *EPubBuilder) Done() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.book == nil {
		return "", ErrNotInitialized
	}
	defer b.cleanup()

	if len(b.pages) == 0 {
		return "", fmt.Errorf("no pages to write")
	}

	if cover := b.cover(); cover != nil {
		internal, err := b.addImage("cover"+extensionFor(cover.ContentType), cover.Content)
		if err != nil {
			return "", fmt.Errorf("failed to add cover: %w", err)
		}
		b.book.SetCover(internal, "")
	}

	indexes := make([]int, 0, len(b.pages))
	for i := range b.pages {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var body strings.Builder
	fmt.Fprintf(&body, "<h1>%s</h1>\n", html.EscapeString(b.sectionTitle))
	for n, i := range indexes {
		fmt.Fprintf(&body,
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`+"\n",
			b.pages[i], n+1,
		)
	}
	if _, err := b.book.AddSection(body.String(), b.sectionTitle, "", ""); err != nil {
		return "", fmt.Errorf("failed to add section: %w", err)
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.outputDir, b.fileName)
	if err := b.book.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}
	return outputPath, nil
}

// Abort drops the book in progress.
func (b *EPubBuilder) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup()
}

func (b *EPubBuilder) cover() *CoverData {
	if b.chapterCover != nil {
		return b.chapterCover
	}
	return b.mangaCover
}

func (b *EPubBuilder) addImage(name string, content []byte) (string, error) {
	path := filepath.Join(b.workDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return b.book.AddImage(path, name)
}

func (b *EPubBuilder) cleanup() {
	if b.workDir != "" {
		os.RemoveAll(b.workDir)
	}
	b.book = nil
	b.workDir = ""
	b.mangaCover = nil
	b.chapterCover = nil
	b.pages = nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		result = "chapter"
	}
	return result
}
