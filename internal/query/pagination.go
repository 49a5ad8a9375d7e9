package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const lastPage = -1

var ErrInvalidPage = errors.New("Invalid page.")

// Paginator reads page-number pagination parameters.
type Paginator struct {
	PageSize    int
	MaxPageSize int
}

// Page is a requested page. Number is 1-based until Resolve is called with
// the total row count.
type Page struct {
	Number int
	Size   int
}

// Page parses the page and page_size parameters. A page_size that is not a
// positive integer falls back to the default; larger values are capped.
// "last" selects the final page.
func (p Paginator) Page(values url.Values) (Page, error) {
	size := p.PageSize
	if size <= 0 {
		size = 10
	}
	if raw := values.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
			if p.MaxPageSize > 0 && size > p.MaxPageSize {
				size = p.MaxPageSize
			}
		}
	}

	raw := strings.TrimSpace(values.Get("page"))
	switch raw {
	case "":
		return Page{Number: 1, Size: size}, nil
	case "last":
		return Page{Number: lastPage, Size: size}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return Page{}, ErrInvalidPage
	}
	return Page{Number: n, Size: size}, nil
}

// NumPages returns the page count for total rows. An empty result still has
// one (empty) page.
func (pg Page) NumPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(pg.Size) - 1) / int64(pg.Size))
}

// Resolve checks the page against the row count and fixes "last".
func (pg *Page) Resolve(total int64) error {
	pages := pg.NumPages(total)
	if pg.Number == lastPage {
		pg.Number = pages
	}
	if pg.Number < 1 || pg.Number > pages {
		return ErrInvalidPage
	}
	return nil
}

func (pg Page) Offset() int {
	return (pg.Number - 1) * pg.Size
}

func (pg Page) Limit() int {
	return pg.Size
}

// Envelope is the paginated list body.
type Envelope[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewEnvelope wraps a resolved page of results. Links reuse the request URL
// with only the page parameter changed.
func NewEnvelope[T any](requestURL *url.URL, pg Page, total int64, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	env := Envelope[T]{Count: total, Results: results}
	if pg.Number < pg.NumPages(total) {
		next := withPage(requestURL, pg.Number+1)
		env.Next = &next
	}
	if pg.Number > 1 {
		prev := withPage(requestURL, pg.Number-1)
		env.Previous = &prev
	}
	return env
}

func withPage(u *url.URL, number int) string {
	copied := *u
	q := copied.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	copied.RawQuery = q.Encode()
	return copied.String()
}
