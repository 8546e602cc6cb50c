// Package pagination computes page windows and the page-number strip shown under listings.
package pagination

import (
	"errors"
	"math"
	"strconv"
)

// ErrPageOutOfRange is returned when a page past the last one is requested.
var ErrPageOutOfRange = errors.New("page out of range")

// Page is one slice of a listing together with the data needed to render page links.
type Page[T any] struct {
	Items   []T
	Number  int
	PerPage int
	Total   int64
}

// ParsePage reads the "page" query value. Anything that is not a positive integer becomes 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset returns the row offset for page n. It saturates at math.MaxInt instead of overflowing.
func Offset(n, perPage int) int {
	if n <= 1 || perPage <= 0 {
		return 0
	}
	if n-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (n - 1) * perPage
}

// Check reports ErrPageOutOfRange when page n has no rows. Page 1 is always valid,
// even for an empty listing.
func Check(n, perPage int, total int64) error {
	if n <= 1 {
		return nil
	}
	if perPage <= 0 {
		return ErrPageOutOfRange
	}
	pages := (total + int64(perPage) - 1) / int64(perPage)
	if int64(n-1) >= pages {
		return ErrPageOutOfRange
	}
	return nil
}

// Pages is the number of pages needed for Total rows.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.Pages() }

// IterPages returns the page numbers to show, with 0 marking a gap. It keeps one page at each
// edge, one before and two after the current page.
func (p Page[T]) IterPages() []int {
	return iterPages(p.Number, p.Pages(), 1, 1, 2, 1)
}

func iterPages(current, pages, leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	var out []int
	last := 0
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num >= current-leftCurrent && num <= current+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}
