package listing

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sort"
	"strconv"
	"sync"

	"grocer/core/api"

	"golang.org/x/sync/singleflight"
)

// All selects every page. It is the same value as page 0.
const All = 0

// Decoder turns one raw record of a page into an item.
type Decoder[T any] func(rec api.Record) (T, error)

// Collection presents a page-oriented remote listing as one indexable sequence.
// Pages are fetched on demand and cached for the collection's lifetime.
type Collection[T any] struct {
	requester api.Requester
	decode    Decoder[T]
	itemsKey  string
	command   string
	params    api.Params

	length  int
	pages   int
	perPage int

	mu    sync.Mutex
	cache map[int][]T
	sf    singleflight.Group
}

// New builds a collection from the first page response. The response's
// command and parameters are reused for every other page, with only the page
// number changed.
func New[T any](requester api.Requester, first *api.Response, itemsKey string, decode Decoder[T]) (*Collection[T], error) {
	if first == nil {
		return nil, fmt.Errorf("first page is nil: %w", api.ErrInvalidArgument)
	}

	c := &Collection[T]{
		requester: requester,
		decode:    decode,
		itemsKey:  itemsKey,
		command:   first.Command,
		params:    first.Params,
		cache:     make(map[int][]T),
	}

	items, err := c.decodePage(first.Record)
	if err != nil {
		return nil, err
	}

	c.pages = first.Int("TotalPageCount")
	if c.pages < 1 {
		c.pages = 1
	}
	c.perPage = first.Int("PageProductCount")
	if c.perPage < 1 {
		c.perPage = len(items)
	}
	c.length = c.perPage
	if first.Has("TotalProductCount") {
		c.length = clampLength(first.Int("TotalProductCount"), c.perPage, c.pages)
	}

	pageNumber := first.Int("PageNumber")
	if pageNumber < 1 {
		pageNumber = 1
	}
	c.cache[pageNumber] = items
	return c, nil
}

// Len returns the total number of items across all pages.
func (c *Collection[T]) Len() int {
	return c.length
}

// Pages returns the number of pages.
func (c *Collection[T]) Pages() int {
	return c.pages
}

// PerPage returns the number of items on a full page.
func (c *Collection[T]) PerPage() int {
	return c.perPage
}

// Cached reports whether page p has been fetched.
func (c *Collection[T]) Cached(p int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cache[p]
	return ok
}

// CachedPages returns the fetched page numbers in ascending order.
func (c *Collection[T]) CachedPages() []int {
	c.mu.Lock()
	pages := make([]int, 0, len(c.cache))
	for p := range c.cache {
		pages = append(pages, p)
	}
	c.mu.Unlock()
	sort.Ints(pages)
	return pages
}

// At returns the item at global index n, fetching its page if necessary.
func (c *Collection[T]) At(ctx context.Context, n int) (T, error) {
	var zero T
	if n < 0 || n >= c.length || c.perPage < 1 {
		return zero, fmt.Errorf("index %d of %d: %w", n, c.length, api.ErrOutOfRange)
	}

	items, err := c.page(ctx, n/c.perPage+1)
	if err != nil {
		return zero, err
	}
	offset := n % c.perPage
	if offset >= len(items) {
		return zero, fmt.Errorf("index %d beyond a short page: %w", n, api.ErrOutOfRange)
	}
	return items[offset], nil
}

// Page returns the items of page p (1-based). Page All (0) fetches every page
// in ascending order and returns them concatenated; on a long listing that is
// one request per page and may take a very long time.
func (c *Collection[T]) Page(ctx context.Context, p int) ([]T, error) {
	if err := c.checkPage(p); err != nil {
		return nil, err
	}
	if p != All {
		return c.page(ctx, p)
	}

	var all []T
	for page := 1; page <= c.pages; page++ {
		items, err := c.page(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// Each yields the items of the requested pages, in the order requested.
// With no pages, or a single All, every page from 1 to Pages is visited.
// A page is only fetched once every item of the previous one has been yielded,
// so consumers see results incrementally. An invalid page yields
// ErrInvalidPage when it is reached and ends the sequence.
func (c *Collection[T]) Each(ctx context.Context, pages ...int) iter.Seq2[T, error] {
	every := len(pages) == 0 || (len(pages) == 1 && pages[0] == All)

	return func(yield func(T, error) bool) {
		var zero T
		for i := 0; ; i++ {
			var p int
			if every {
				if i >= c.pages {
					return
				}
				p = i + 1
			} else {
				if i >= len(pages) {
					return
				}
				p = pages[i]
			}
			if p == All {
				// All only has meaning on its own.
				yield(zero, fmt.Errorf("page %d in a page list: %w", p, api.ErrInvalidPage))
				return
			}
			if err := c.checkPage(p); err != nil {
				yield(zero, err)
				return
			}
			items, err := c.page(ctx, p)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// clampLength keeps a server-reported total within what the pages can hold.
func clampLength(total, perPage, pages int) int {
	if total < 0 {
		return 0
	}
	if perPage > 0 && pages <= math.MaxInt/perPage && total > perPage*pages {
		return perPage * pages
	}
	return total
}

func (c *Collection[T]) checkPage(p int) error {
	if p < 0 || p > c.pages {
		return fmt.Errorf("page %d of %d: %w", p, c.pages, api.ErrInvalidPage)
	}
	return nil
}

// page returns page p from the cache, fetching it once if absent.
func (c *Collection[T]) page(ctx context.Context, p int) ([]T, error) {
	c.mu.Lock()
	items, ok := c.cache[p]
	c.mu.Unlock()
	if ok {
		return items, nil
	}

	key := strconv.Itoa(p)
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		items, ok := c.cache[p]
		c.mu.Unlock()
		if ok {
			return items, nil
		}

		resp, err := c.requester.Request(ctx, c.command, c.params.With("page", key))
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", p, err)
		}
		items, err = c.decodePage(resp.Record)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[p] = items
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func (c *Collection[T]) decodePage(rec api.Record) ([]T, error) {
	records := rec.Records(c.itemsKey)
	items := make([]T, 0, len(records))
	for _, r := range records {
		item, err := c.decode(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
