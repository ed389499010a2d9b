package typed

import (
	"context"
	"iter"
	"math"
)

// Paginator walks a query in fixed-size pages, advancing a start-after
// cursor from the last document of each page. The query must carry an
// ordering, since the cursor is positional within it.
type Paginator[T any] struct {
	query   *Query[T]
	perPage int
}

// Page is one slice of paginated results.
type Page[T any] struct {
	Items  []*Model[T]
	Number int

	last bool
}

// HasNext reports whether another page may follow. The final short page and
// any page followed by an empty one report false.
func (p *Page[T]) HasNext() bool { return !p.last }

// HasPrevious reports whether the page is not the first.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// Len returns the number of items on the page.
func (p *Page[T]) Len() int { return len(p.Items) }

// Pages iterates the pages lazily; each page is one query round trip.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[*Page[T], error] {
	return func(yield func(*Page[T], error) bool) {
		if p.perPage <= 0 {
			return
		}
		var cursor *Model[T]
		number := 1
		for {
			pageQuery := p.query.Limit(p.perPage)
			if cursor != nil {
				pageQuery = pageQuery.StartAfter(cursor)
			}
			items, err := pageQuery.All(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(items) == 0 {
				return
			}
			page := &Page[T]{Items: items, Number: number, last: len(items) < p.perPage}
			if !yield(page, nil) {
				return
			}
			if page.last {
				return
			}
			cursor = items[len(items)-1]
			number++
		}
	}
}

// Count returns the total number of documents the query matches, via the
// store's aggregation count.
func (p *Paginator[T]) Count(ctx context.Context) (int64, error) {
	return p.query.Count(ctx)
}

// NumPages returns the page count for the current total.
func (p *Paginator[T]) NumPages(ctx context.Context) (int, error) {
	if p.perPage <= 0 {
		return 0, nil
	}
	total, err := p.Count(ctx)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(float64(total) / float64(p.perPage))), nil
}
