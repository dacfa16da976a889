package data

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Manga is a catalog entry as returned by the listing and search endpoints.
type Manga struct {
	ID                  string
	Title               string
	CoverURL            string
	CoverWideURL        string
	Rating              float64
	ViewCount           int64
	BookmarkCount       int64
	LatestChapterNumber float64
	LatestChapterTime   time.Time
	CountryID           string
	Rank                int
	Genres              []string
}

// MangaDetail is the full record behind the details view.
type MangaDetail struct {
	Manga
	AltTitle        string
	Description     string
	Status          Status
	ReleaseYear     string
	Authors         []string
	Artists         []string
	Formats         []string
	LatestChapterID string
}

// ChapterSummary is one row of a chapter list.
type ChapterSummary struct {
	ID           string
	Number       float64
	Title        string
	ThumbnailURL string
	ViewCount    int64
	ReleaseDate  time.Time
}

// ChapterContent is a loaded chapter: its image sequence and neighbours.
// PrevID and NextID are nil exactly at the ends of the sequence.
type ChapterContent struct {
	ID          string
	MangaID     string
	Number      float64
	Title       string
	Thumbnail   string
	BaseURL     string
	BaseURLLow  string
	Path        string
	Files       []string
	PrevID      *string
	PrevNumber  *float64
	NextID      *string
	NextNumber  *float64
	ViewCount   int64
	ReleaseDate time.Time
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page        int
	PageSize    int
	TotalPage   int
	TotalRecord int
}

// Quality selects one of the two image hosts of a chapter.
type Quality string

const (
	QualityHigh Quality = "high"
	QualityLow  Quality = "low"
)

// Toggle returns the other quality.
func (q Quality) Toggle() Quality {
	if q == QualityLow {
		return QualityHigh
	}
	return QualityLow
}

// Label is the short badge shown next to the reader title.
func (q Quality) Label() string {
	if q == QualityLow {
		return "SD"
	}
	return "HD"
}

// ParseQuality maps user input onto a Quality, defaulting to high.
func ParseQuality(s string) Quality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "sd":
		return QualityLow
	default:
		return QualityHigh
	}
}

// SortOrder is the direction chapters or catalog pages are sorted in.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// ParseSortOrder defaults to descending for anything but "asc".
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Status is the publication status of a title.
type Status int

const (
	StatusUnknown Status = iota
	StatusOngoing
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// UnmarshalJSON accepts the numeric code the API sends as well as a name.
func (s *Status) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = StatusUnknown
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		switch n {
		case 1:
			*s = StatusOngoing
		case 2:
			*s = StatusCompleted
		default:
			*s = StatusUnknown
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch strings.ToLower(str) {
	case "ongoing", "1":
		*s = StatusOngoing
	case "completed", "complete", "end", "2":
		*s = StatusCompleted
	default:
		*s = StatusUnknown
	}
	return nil
}

// LoadingHint tells a renderer whether a page image should be fetched
// immediately or deferred until it nears the viewport.
type LoadingHint string

const (
	LoadEager LoadingHint = "eager"
	LoadLazy  LoadingHint = "lazy"
)

// EagerPages is how many leading pages of a chapter load eagerly.
const EagerPages = 3

// Page is one image of a chapter resolved for a given quality.
type Page struct {
	Index   int
	File    string
	URL     string
	Loading LoadingHint
}

// HasPrev reports whether a previous chapter exists.
func (c *ChapterContent) HasPrev() bool {
	return c != nil && c.PrevID != nil && *c.PrevID != ""
}

// HasNext reports whether a next chapter exists.
func (c *ChapterContent) HasNext() bool {
	return c != nil && c.NextID != nil && *c.NextID != ""
}

// BaseFor returns the image host for q. A missing low-quality host falls
// back to the high-quality one.
func (c *ChapterContent) BaseFor(q Quality) string {
	if q == QualityLow && c.BaseURLLow != "" {
		return c.BaseURLLow
	}
	return c.BaseURL
}

// ImageURL builds the address of file under quality q.
func (c *ChapterContent) ImageURL(q Quality, file string) string {
	return c.BaseFor(q) + c.Path + file
}

// Pages resolves every file of the chapter for quality q.
func (c *ChapterContent) Pages(q Quality) []Page {
	if c == nil {
		return nil
	}
	pages := make([]Page, len(c.Files))
	for i, f := range c.Files {
		hint := LoadLazy
		if i < EagerPages {
			hint = LoadEager
		}
		pages[i] = Page{Index: i, File: f, URL: c.ImageURL(q, f), Loading: hint}
	}
	return pages
}

// DisplayTitle renders "Chapter N - title", or "" when c is nil.
func (c *ChapterContent) DisplayTitle() string {
	if c == nil {
		return ""
	}
	t := "Chapter " + FormatChapterNumber(c.Number)
	if c.Title != "" {
		t += " - " + c.Title
	}
	return t
}

// FormatChapterNumber prints a chapter number in its shortest form,
// so 69 is "69" and 69.5 is "69.5".
func FormatChapterNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
