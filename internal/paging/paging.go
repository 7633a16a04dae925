// Package paging maps a page number onto a window of article numbers, newest
// first.
package paging

import (
	"strconv"
	"strings"
)

// PageSize is the number of articles listed per page.
const PageSize = 25

// Bounds are the first and last article numbers of a group. First > Last
// means the group is empty.
type Bounds struct {
	First int64
	Last  int64
}

// Empty reports whether the group has no articles.
func (b Bounds) Empty() bool {
	return b.First > b.Last
}

// Window is the article range to request for one page.
type Window struct {
	Page       int64 // effective page, within [1, TotalPages]
	TotalPages int64
	Low        int64 // inclusive
	High       int64 // inclusive
	Empty      bool
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool {
	return w.Page > 1
}

// HasNext reports whether a next page exists.
func (w Window) HasNext() bool {
	return w.Page < w.TotalPages
}

// ParsePage reads the page query parameter. Anything that is not a positive
// integer means page 1.
func ParsePage(raw string) int64 {
	page, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Plan computes the window for page. Page 1 holds the PageSize highest
// article numbers. Pages outside [1, TotalPages] are clamped into it. Gaps in
// the numbering are not accounted for, so a window may yield fewer than
// PageSize articles.
func Plan(page int64, b Bounds) Window {
	if b.Empty() {
		return Window{Page: 1, TotalPages: 1, Empty: true}
	}

	total := (b.Last-b.First)/PageSize + 1
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	high := b.Last - (page-1)*PageSize
	low := high - PageSize + 1
	if low < b.First {
		low = b.First
	}
	return Window{Page: page, TotalPages: total, Low: low, High: high}
}
