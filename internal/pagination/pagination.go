// Package pagination builds collection envelopes for paged query results.
package pagination

import (
	"errors"
	"math"
	"net/url"
	"strconv"
)

// Params is a normalised page request.
type Params struct {
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of wrapping, so a far page stays past the end.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Limits bounds page sizes.
type Limits struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultLimits are used when no configuration is supplied.
var DefaultLimits = Limits{DefaultPerPage: 10, MaxPerPage: 100}

// Parse turns raw query values into Params. Missing or malformed values take
// the defaults; page is at least 1 and per_page is clamped to [1, MaxPerPage].
func (l Limits) Parse(rawPage, rawPerPage string) Params {
	page, ok := atoiSaturating(rawPage)
	if !ok || page < 1 {
		page = 1
	}
	perPage, ok := atoiSaturating(rawPerPage)
	if !ok {
		perPage = l.DefaultPerPage
	}
	perPage = min(max(perPage, 1), max(l.MaxPerPage, 1))
	// keep (page-1)*perPage representable
	page = min(page, math.MaxInt/perPage)
	return Params{Page: page, PerPage: perPage}
}

// atoiSaturating parses an integer, keeping strconv's saturated value for
// out-of-range input so a huge page is still treated as a far page.
func atoiSaturating(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

// Meta describes the position of a page within the collection.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// Links are navigation links. Next and Prev are null when absent.
type Links struct {
	Self string  `json:"self"`
	Next *string `json:"next"`
	Prev *string `json:"prev"`
}

// Collection is the envelope returned for every paged listing.
type Collection[T any] struct {
	Items []T   `json:"items"`
	Meta  Meta  `json:"_meta"`
	Links Links `json:"_links"`
}

// LinkFunc renders the URL of the given page.
type LinkFunc func(page, perPage int) string

// TotalPages is ceil(total / perPage).
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// NewCollection wraps one page of already-serialized items. A page past the
// end is valid and simply has no items.
func NewCollection[T any](items []T, p Params, total int64, link LinkFunc) Collection[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := TotalPages(total, p.PerPage)

	links := Links{Self: link(p.Page, p.PerPage)}
	if p.Page < totalPages {
		next := link(p.Page+1, p.PerPage)
		links.Next = &next
	}
	if p.Page > 1 {
		prev := link(p.Page-1, p.PerPage)
		links.Prev = &prev
	}

	return Collection[T]{
		Items: items,
		Meta: Meta{
			Page:       p.Page,
			PerPage:    p.PerPage,
			TotalPages: totalPages,
			TotalItems: total,
		},
		Links: links,
	}
}

// Serialize applies fn to each stored entity and builds the collection.
func Serialize[S, T any](rows []S, fn func(S) T, p Params, total int64, link LinkFunc) Collection[T] {
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, fn(row))
	}
	return NewCollection(items, p, total, link)
}

// Endpoint returns a LinkFunc for path that keeps the extra filter values.
func Endpoint(path string, extra url.Values) LinkFunc {
	return func(page, perPage int) string {
		q := url.Values{}
		for k, vs := range extra {
			if k == "page" || k == "per_page" {
				continue
			}
			q[k] = append([]string(nil), vs...)
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(perPage))
		return path + "?" + q.Encode()
	}
}
