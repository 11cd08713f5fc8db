// Package store holds paged, filtered views of the backend collections.
// Each entity store wraps one generic Collection.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/metrics"
)

// ErrSuperseded is returned by a fetch whose response was discarded
// because a newer fetch was dispatched while it was in flight.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// DefaultLimit is the page size used when none is configured
const DefaultLimit = 10

// Query holds the parameters of one page fetch
type Query[F any] struct {
	Page   int
	Limit  int
	Filter F
}

// Page is one response window as returned by the backend. Page and Limit
// may be zero when the endpoint omits them.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// FetchFunc maps a query to the entity's request and response shapes
type FetchFunc[T, F any] func(ctx context.Context, q Query[F]) (*Page[T], error)

// Filter is implemented by the filter struct of each entity. With returns
// a copy with one field changed.
type Filter[F any] interface {
	With(field, value string) (F, error)
}

// State is a snapshot of a paged collection
type State[T, F any] struct {
	Items   []T
	Total   int
	Page    int
	Limit   int
	Filter  F
	Loading bool
	Err     string
}

// Collection is a concurrency-safe paged collection. Network I/O never
// happens while mu is held.
type Collection[T any, F Filter[F]] struct {
	name   string
	fetch  FetchFunc[T, F]
	logger *slog.Logger

	mu    sync.Mutex
	state State[T, F]
	seq   uint64 // last dispatched fetch
}

// NewCollection creates an empty collection positioned on page 1
func NewCollection[T any, F Filter[F]](name string, limit int, fetch FetchFunc[T, F], logger *slog.Logger) *Collection[T, F] {
	if limit < 1 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T, F]{
		name:   name,
		fetch:  fetch,
		logger: logger.With("component", "store", "store", name),
		state:  State[T, F]{Page: 1, Limit: limit},
	}
}

// Name returns the store name used in logs and metrics
func (c *Collection[T, F]) Name() string {
	return c.name
}

// Snapshot returns a copy of the current state
func (c *Collection[T, F]) Snapshot() State[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Items = append([]T(nil), c.state.Items...)
	return st
}

// Query returns the parameters the next Refresh will use
func (c *Collection[T, F]) Query() Query[F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Query[F]{Page: c.state.Page, Limit: c.state.Limit, Filter: c.state.Filter}
}

// SetPage moves to page n. Out of range pages are not clamped; the next
// fetch simply returns no items.
func (c *Collection[T, F]) SetPage(n int) {
	c.mu.Lock()
	c.state.Page = n
	c.mu.Unlock()
}

// SetLimit changes the page size. The current page is kept.
func (c *Collection[T, F]) SetLimit(n int) {
	if n < 1 {
		return
	}
	c.mu.Lock()
	c.state.Limit = n
	c.mu.Unlock()
}

// SetFilter changes one filter field and resets the page to 1
func (c *Collection[T, F]) SetFilter(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.state.Filter.With(field, value)
	if err != nil {
		return err
	}
	c.state.Filter = next
	c.state.Page = 1
	return nil
}

// resetter is implemented by filters that carry a scope which must
// survive ResetFilters
type resetter[F any] interface {
	Reset() F
}

// ResetFilters clears the filter fields and resets the page to 1. Scope
// fields kept by the filter's Reset are preserved.
func (c *Collection[T, F]) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var next F
	if r, ok := any(c.state.Filter).(resetter[F]); ok {
		next = r.Reset()
	}
	c.state.Filter = next
	c.state.Page = 1
}

// Refresh fetches the stored page, limit and filter
func (c *Collection[T, F]) Refresh(ctx context.Context) error {
	return c.Fetch(ctx, c.Query())
}

// Fetch loads one page. On success items, total, page, limit and filter
// are replaced together. On failure only Err changes. When a newer fetch
// was dispatched meanwhile the response is dropped and ErrSuperseded is
// returned.
func (c *Collection[T, F]) Fetch(ctx context.Context, q Query[F]) error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Loading = true
	c.state.Err = ""
	c.mu.Unlock()

	page, err := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		metrics.IncStoreFetch(c.name, "superseded")
		c.logger.Warn("discarding stale response", "seq", seq, "latest", c.seq, "page", q.Page)
		return ErrSuperseded
	}
	c.state.Loading = false

	if err != nil {
		metrics.IncStoreFetch(c.name, "error")
		c.state.Err = api.Message(err, "Failed to load "+c.name)
		c.logger.Debug("fetch failed", "page", q.Page, "error", err)
		return err
	}

	items := page.Items
	if len(items) > q.Limit {
		items = items[:q.Limit]
	}
	c.state.Items = append([]T(nil), items...)
	c.state.Total = max(page.Total, 0)
	c.state.Page = q.Page
	c.state.Limit = q.Limit
	if page.Page > 0 {
		c.state.Page = page.Page
	}
	if page.Limit > 0 && page.Limit <= q.Limit {
		c.state.Limit = page.Limit
	}
	c.state.Filter = q.Filter

	metrics.IncStoreFetch(c.name, "success")
	c.logger.Debug("fetched page", "page", c.state.Page, "items", len(items), "total", c.state.Total)
	return nil
}

// Mutate runs a write against the backend and refetches the current page
// when it succeeds. The returned error is the write's own result; a failed
// refetch is only recorded in Err.
func (c *Collection[T, F]) Mutate(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := c.write(ctx, op, fn); err != nil {
		return err
	}
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Warn("refresh after mutation failed", "op", op, "error", err)
	}
	return nil
}

// write runs fn and records its failure without refetching
func (c *Collection[T, F]) write(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		metrics.IncStoreMutation(c.name, op, "error")
		c.mu.Lock()
		c.state.Err = api.Message(err, "Failed to "+op)
		c.mu.Unlock()
		c.logger.Debug("mutation failed", "op", op, "error", err)
		return err
	}
	metrics.IncStoreMutation(c.name, op, "success")
	return nil
}

// RemoveLocal drops every cached item matching match and decrements the
// total by the same amount. It returns the number of removed items. Fetches
// still in flight are superseded so they cannot bring the items back.
func (c *Collection[T, F]) RemoveLocal(match func(T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]T, 0, len(c.state.Items))
	for _, item := range c.state.Items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	removed := len(c.state.Items) - len(kept)
	if removed == 0 {
		return 0
	}
	c.state.Items = kept
	c.state.Total = max(c.state.Total-removed, 0)
	c.supersedeLocked()
	return removed
}

// PatchLocal edits cached items in place. Membership and total are not
// touched. It reports whether any item matched; when one did, fetches in
// flight are superseded like in RemoveLocal.
func (c *Collection[T, F]) PatchLocal(match func(T) bool, patch func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for i := range c.state.Items {
		if match(c.state.Items[i]) {
			patch(&c.state.Items[i])
			found = true
		}
	}
	if found {
		c.supersedeLocked()
	}
	return found
}

// supersedeLocked invalidates every dispatched fetch. None of them will
// apply, so the collection is no longer loading. mu must be held.
func (c *Collection[T, F]) supersedeLocked() {
	c.seq++
	c.state.Loading = false
}
