package data

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestChapterContentNeighbours(t *testing.T) {
	first := &ChapterContent{ID: "c1", NextID: strPtr("c2")}
	last := &ChapterContent{ID: "c9", PrevID: strPtr("c8")}
	blank := &ChapterContent{ID: "c5", PrevID: strPtr(""), NextID: strPtr("c6")}

	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
	assert.False(t, blank.HasPrev(), "empty id counts as no neighbour")

	var missing *ChapterContent
	assert.False(t, missing.HasPrev())
	assert.False(t, missing.HasNext())
}

func TestChapterContentDisplayTitle(t *testing.T) {
	assert.Equal(t, "Chapter 12.5 - Return", (&ChapterContent{Number: 12.5, Title: "Return"}).DisplayTitle())
	assert.Equal(t, "Chapter 3", (&ChapterContent{Number: 3}).DisplayTitle())

	var missing *ChapterContent
	assert.Empty(t, missing.DisplayTitle())
}

func TestChapterContentImageURL(t *testing.T) {
	ch := &ChapterContent{
		BaseURL:    "https://hd.example.com",
		BaseURLLow: "https://sd.example.com",
		Path:       "/chapter/abc/",
		Files:      []string{"01.jpg", "02.jpg"},
	}

	assert.Equal(t, "https://hd.example.com/chapter/abc/01.jpg", ch.ImageURL(QualityHigh, "01.jpg"))
	assert.Equal(t, "https://sd.example.com/chapter/abc/02.jpg", ch.ImageURL(QualityLow, "02.jpg"))

	ch.BaseURLLow = ""
	assert.Equal(t, "https://hd.example.com/chapter/abc/02.jpg", ch.ImageURL(QualityLow, "02.jpg"))
}

func TestChapterContentPagesLoadingHints(t *testing.T) {
	ch := &ChapterContent{BaseURL: "b", Path: "/p/", Files: []string{"1", "2", "3", "4", "5"}}

	pages := ch.Pages(QualityHigh)
	assert.Len(t, pages, 5)
	for i, p := range pages {
		assert.Equal(t, i, p.Index)
		if i < 3 {
			assert.Equal(t, LoadEager, p.Loading, "page %d", i)
		} else {
			assert.Equal(t, LoadLazy, p.Loading, "page %d", i)
		}
	}
	assert.Equal(t, "b/p/4", pages[3].URL)
}

func TestStatusUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{`1`, StatusOngoing},
		{`2`, StatusCompleted},
		{`7`, StatusUnknown},
		{`"Ongoing"`, StatusOngoing},
		{`"completed"`, StatusCompleted},
		{`null`, StatusUnknown},
	}
	for _, tt := range tests {
		var s Status
		assert.NoError(t, json.Unmarshal([]byte(tt.in), &s), tt.in)
		assert.Equal(t, tt.want, s, tt.in)
	}
}

func TestFormatChapterNumber(t *testing.T) {
	assert.Equal(t, "69", FormatChapterNumber(69))
	assert.Equal(t, "69.5", FormatChapterNumber(69.5))
	assert.Equal(t, "0", FormatChapterNumber(0))
}

func TestToggles(t *testing.T) {
	assert.Equal(t, QualityLow, QualityHigh.Toggle())
	assert.Equal(t, QualityHigh, QualityLow.Toggle())
	assert.Equal(t, SortAsc, SortDesc.Toggle())
	assert.Equal(t, SortDesc, ParseSortOrder("bogus"))
	assert.Equal(t, SortAsc, ParseSortOrder("ASC"))
	assert.Equal(t, QualityLow, ParseQuality("sd"))
	assert.Equal(t, "HD", QualityHigh.Label())
}
