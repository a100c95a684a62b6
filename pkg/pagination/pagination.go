package pagination

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Bounds declares the default page size of a listing and its ceiling.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

// Generic listings use 10 items per page, capped at 100.
var Generic = Bounds{DefaultLimit: 10, MaxLimit: 100}

// Params holds a clamped pagination window.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// Parse turns raw page/limit strings into a window. Missing, zero or
// non-numeric values fall back to the defaults; everything else is clamped
// (page >= 1, limit in [1, MaxLimit]). page is capped so that the skip
// never overflows.
func Parse(page, limit string, b Bounds) Params {
	b = b.normalize()

	p := parseInt(page, 1)
	if p < 1 {
		p = 1
	}

	l := parseInt(limit, b.DefaultLimit)
	if l < 1 {
		l = 1
	}
	if l > b.MaxLimit {
		l = b.MaxLimit
	}
	if maxPage := math.MaxInt/l - 1; p > maxPage {
		p = maxPage
	}

	return Params{Page: p, Limit: l, Skip: (p - 1) * l}
}

// FromRequest extracts the page and limit query parameters of r.
func FromRequest(r *http.Request, b Bounds) Params {
	q := r.URL.Query()
	return Parse(q.Get("page"), q.Get("limit"), b)
}

func (b Bounds) normalize() Bounds {
	if b.MaxLimit < 1 {
		b.MaxLimit = Generic.MaxLimit
	}
	if b.DefaultLimit < 1 {
		b.DefaultLimit = Generic.DefaultLimit
	}
	if b.DefaultLimit > b.MaxLimit {
		b.DefaultLimit = b.MaxLimit
	}
	return b
}

// parseInt returns def for empty, zero or unparseable input. Out of range
// numbers saturate.
func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if errors.Is(err, strconv.ErrRange) {
		return v
	}
	if err != nil || v == 0 {
		return def
	}
	return v
}

// TotalPages returns ceil(total / limit), 0 when there is nothing to page.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Result is one window of a paginated listing.
type Result[T any] struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Skip       int `json:"skip"`
	Data       []T `json:"data"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// CountFunc counts every record matching the listing's predicate.
type CountFunc func(ctx context.Context) (int, error)

// FetchFunc loads one window of the listing.
type FetchFunc[T any] func(ctx context.Context, limit, skip int) ([]T, error)

// Paginate runs count and fetch concurrently and assembles the window. Both
// must succeed; the first failure cancels the other and is returned.
func Paginate[T any](ctx context.Context, params Params, count CountFunc, fetch FetchFunc[T]) (Result[T], error) {
	var (
		total int
		items []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := count(gctx)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := fetch(gctx, params.Limit, params.Skip)
		if err != nil {
			return err
		}
		items = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result[T]{}, err
	}

	if items == nil {
		items = []T{}
	}

	return Result[T]{
		Page:       params.Page,
		Limit:      params.Limit,
		Skip:       params.Skip,
		Data:       items,
		TotalPages: TotalPages(total, params.Limit),
		TotalItems: total,
	}, nil
}

// Meta is the richer metadata attached to catalog listings.
type Meta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

// Meta derives navigation metadata from the window.
func (r Result[T]) Meta() Meta {
	m := Meta{
		Total:       r.TotalItems,
		Page:        r.Page,
		Limit:       r.Limit,
		TotalPages:  r.TotalPages,
		HasNextPage: r.Page < r.TotalPages,
		HasPrevPage: r.Page > 1,
	}
	if m.HasNextPage {
		next := r.Page + 1
		m.NextPage = &next
	}
	if m.HasPrevPage {
		prev := r.Page - 1
		m.PrevPage = &prev
	}
	return m
}
