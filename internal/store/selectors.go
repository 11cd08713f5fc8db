package store

// TotalPages returns the number of pages for total items, never less than 1
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// TotalPages returns the page count of the snapshot
func (s State[T, F]) TotalPages() int {
	return TotalPages(s.Total, s.Limit)
}

// CanGoTo reports whether page is inside [1, TotalPages]. Callers check it
// before SetPage; the store itself does not clamp.
func (s State[T, F]) CanGoTo(page int) bool {
	return page >= 1 && page <= s.TotalPages()
}

// HasPrev and HasNext drive the pager
func (s State[T, F]) HasPrev() bool { return s.Page > 1 }
func (s State[T, F]) HasNext() bool { return s.Page < s.TotalPages() }

// RowNumber is the 1-based position of Items[index] across all pages
func (s State[T, F]) RowNumber(index int) int {
	return (s.Page-1)*s.Limit + index + 1
}
