// Package pagination provides generic offset/limit page bookkeeping for
// listing endpoints. It carries no business rules.
package pagination

// Request asks for a window of a listing.
type Request struct {
	Offset int
	Limit  int
}

// Page is one window of a listing plus the bookkeeping needed to request
// the next one.
type Page[T any] struct {
	Items  []T
	Offset int
	Length int
	Total  int
}

// PageOf wraps items that were already windowed (e.g. by a LIMIT/OFFSET
// query) together with the total count of the full listing.
func PageOf[T any](items []T, offset, total int) Page[T] {
	return Page[T]{Items: items, Offset: offset, Length: len(items), Total: total}
}

// Paginate windows a fully materialized slice.
func Paginate[T any](items []T, req Request) Page[T] {
	total := len(items)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if req.Limit >= 0 && offset+req.Limit < total {
		end = offset + req.Limit
	}
	return Page[T]{Items: items[offset:end], Offset: offset, Length: end - offset, Total: total}
}

// Next returns the request for the page following prev, or nil when the
// listing is exhausted.
func Next[T any](prev Page[T], limit int) *Request {
	if prev.Offset+prev.Length >= prev.Total {
		return nil
	}
	return &Request{Offset: prev.Offset + prev.Length, Limit: limit}
}
