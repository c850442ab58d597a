package gateway

import (
	"context"
)

// Query declares a cached read: how to build the backend request from its parameters,
// and which tags the result provides.
type Query[P, R any] struct {
	Name     string
	Build    func(params P) Request
	Provides []Tag
}

// Mutation declares a write and the tags it invalidates on success.
type Mutation[B, R any] struct {
	Name        string
	Build       func(body B) Request
	Invalidates []Tag
}

// Result is the read outcome observed by a caller.
type Result[R any] struct {
	Data      R
	Err       error
	IsLoading bool
	IsError   bool
	IsSkipped bool

	done    bool // set once the read settled; the zero Result never did
	refetch func(ctx context.Context) Result[R]
}

// IsSuccess reports whether Data holds a successful response.
func (r Result[R]) IsSuccess() bool {
	return r.done && !r.IsLoading && !r.IsError && !r.IsSkipped
}

// Refetch forces a new fetch of the same read. Skipped results are returned as is.
func (r Result[R]) Refetch(ctx context.Context) Result[R] {
	if r.refetch == nil {
		return r
	}
	return r.refetch(ctx)
}

type readOptions struct {
	skip  bool
	force bool
}

// ReadOption customizes a single Read.
type ReadOption func(*readOptions)

// SkipWhen skips the read entirely (no backend request, no cache entry) when skip is true.
func SkipWhen(skip bool) ReadOption {
	return func(o *readOptions) { o.skip = o.skip || skip }
}

// Fresh bypasses a cached value and refetches.
func Fresh() ReadOption {
	return func(o *readOptions) { o.force = true }
}

// Read serves q with params through the cache: a fresh cached value is returned directly,
// otherwise the backend is called, sharing any identical fetch already in flight.
// When ctx expires first, the result is loading and the fetch completes in the background.
func Read[P, R any](ctx context.Context, c *Cache, q Query[P, R], params P, opts ...ReadOption) Result[R] {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.skip {
		c.metrics.request("read", outcomeSkip)
		return Result[R]{IsSkipped: true}
	}

	req := q.Build(params)
	key := req.fingerprint(q.Name)
	fetch := func(ctx context.Context) (interface{}, error) {
		var out R
		if err := c.transport.Do(ctx, c.token, req, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	val, err, loading := c.load(ctx, key, q.Provides, o.force, fetch)
	res := newResult[R](val, err, loading)
	res.refetch = func(ctx context.Context) Result[R] {
		return Read(ctx, c, q, params, Fresh())
	}
	return res
}

// Peek returns what the cache currently holds for q with params, never calling the backend.
// An unknown read is reported as loading.
func Peek[P, R any](c *Cache, q Query[P, R], params P) Result[R] {
	key := q.Build(params).fingerprint(q.Name)
	val, err, hasData, loading := c.peek(key)
	if !hasData && err == nil {
		return Result[R]{IsLoading: true}
	}
	return newResult[R](val, err, loading && !hasData)
}

// Mutate sends body through m. On success, the tags m invalidates are marked stale.
// Mutations are never de-duplicated.
func Mutate[B, R any](ctx context.Context, c *Cache, m Mutation[B, R], body B) (R, error) {
	var out R
	if err := c.transport.Do(ctx, c.token, m.Build(body), &out); err != nil {
		c.metrics.request("mutate", outcomeError)
		return out, err
	}
	c.metrics.request("mutate", outcomeMiss)
	c.Invalidate(m.Invalidates...)
	return out, nil
}

func newResult[R any](val interface{}, err error, loading bool) Result[R] {
	res := Result[R]{done: true}
	switch {
	case loading:
		res.IsLoading = true
	case err != nil:
		res.Err = err
		res.IsError = true
	}
	if data, ok := val.(R); ok {
		res.Data = data
	}
	return res
}
