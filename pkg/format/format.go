// Package format renders counts, dates and chapter numbers for display.
package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kerbaras/komik/pkg/data"
)

// Number abbreviates large counts: 1.2M, 3.4K, otherwise the plain integer.
func Number(n int64) string {
	switch {
	case n >= 1_000_000:
		return trim(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trim(float64(n)/1_000) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func trim(f float64) string {
	return strconv.FormatFloat(float64(int64(f*10))/10, 'f', -1, 64)
}

// Total prints n with thousands separators.
func Total(n int) string {
	return humanize.Comma(int64(n))
}

// Rating prints a score with one decimal, or a dash when unrated.
func Rating(r float64) string {
	if r <= 0 {
		return "-"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// RelativeDate describes t relative to now in whole calendar days.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.In(now.Location())
	then := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := int(today.Sub(then).Hours() / 24)

	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	default:
		return plural(days/30, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// ChapterNumber prints a chapter number in its shortest form.
func ChapterNumber(n float64) string {
	return data.FormatChapterNumber(n)
}

// Size prints a byte count, e.g. 4.2 MB.
func Size(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}
