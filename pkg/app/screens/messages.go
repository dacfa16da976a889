package screens

import (
	"errors"

	"github.com/kerbaras/komik/pkg/data"
	"github.com/kerbaras/komik/pkg/services"
)

const (
	ScreenCatalog = "catalog"
	ScreenDetails = "details"
	ScreenReader  = "reader"
)

// SwitchScreenMsg asks the root to show another screen. Data is the manga id
// for details and the chapter id for the reader.
type SwitchScreenMsg struct {
	Screen string
	Data   string
}

// ExportMsg asks the root to export a chapter to EPUB.
type ExportMsg struct {
	ChapterID string
}

type catalogLoadedMsg struct {
	err error
}

type recommendedMsg struct {
	format string
	items  []data.Manga
	err    error
}

type detailLoadedMsg struct {
	id  string
	err error
}

type chaptersLoadedMsg struct {
	id  string
	err error
}

type chapterLoadedMsg struct {
	id  string
	err error
}

type drawerLoadedMsg struct {
	err error
}

type exportProgressMsg services.ExportProgress

type exportDoneMsg struct {
	chapterID string
	path      string
	err       error
}

// stale reports whether err only means a newer request replaced this one.
func stale(err error) bool {
	return errors.Is(err, services.ErrSuperseded)
}
