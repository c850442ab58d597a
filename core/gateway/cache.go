package gateway

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultKeepUnusedFor = 60 * time.Second

// Options configures a Cache.
type Options struct {
	KeepUnusedFor time.Duration // how long an unused read is retained; DefaultKeepUnusedFor when 0
	Metrics       *Metrics
	Now           func() time.Time
}

type fetchFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	data      interface{}
	hasData   bool
	err       error
	inflight  int // fetches running for this entry, at most one per version
	stale     bool
	version   uint64 // bumped by every invalidation of the entry
	dataOf    uint64 // version the held data was fetched at
	tags      []Tag
	fetchedAt time.Time
	lastUsed  time.Time
}

func (e *entry) fresh() bool {
	return e.hasData && e.err == nil && !e.stale
}

// Cache is the query cache of a single session. Every read goes through it so that concurrent
// identical reads share one backend request, and mutations invalidate the reads they affect.
// A Cache is safe for concurrent use.
type Cache struct {
	token     string
	transport Transport
	keepFor   time.Duration
	metrics   *Metrics
	now       func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	entries   map[string]*entry
	tagIndex  map[Tag]map[string]struct{}
	lastPrune time.Time
}

// NewCache returns a Cache reading through transport on behalf of token ("" for anonymous).
func NewCache(transport Transport, token string, opts Options) *Cache {
	if opts.KeepUnusedFor <= 0 {
		opts.KeepUnusedFor = DefaultKeepUnusedFor
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		token:     token,
		transport: transport,
		keepFor:   opts.KeepUnusedFor,
		metrics:   opts.Metrics,
		now:       opts.Now,
		entries:   make(map[string]*entry),
		tagIndex:  make(map[Tag]map[string]struct{}),
	}
}

// Token returns the credential the cache reads with.
func (c *Cache) Token() string { return c.token }

// load returns the cached value for key, fetching it when absent, stale or errored.
// Concurrent loads of the same key share a single fetch, unless the entry was invalidated
// after that fetch started: later loads then start a new one. When ctx is done before the
// fetch completes, load reports loading; the fetch continues and its result is cached.
func (c *Cache) load(ctx context.Context, key string, tags []Tag, force bool, fetch fetchFunc) (val interface{}, err error, loading bool) {
	c.mu.Lock()
	now := c.now()
	c.pruneLocked(now)
	e, ok := c.entries[key]
	if !ok {
		e = &entry{tags: tags}
		c.entries[key] = e
		c.indexLocked(key, tags)
	}
	e.lastUsed = now
	if e.fresh() && !force {
		val = e.data
		c.mu.Unlock()
		c.metrics.request("read", outcomeHit)
		return val, nil, false
	}
	if force && e.inflight == 0 {
		e.stale = true
	}
	version := e.version
	flight := key + "@" + strconv.FormatUint(version, 10)
	c.mu.Unlock()

	ch := c.group.DoChan(flight, func() (interface{}, error) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok {
			cur.inflight++
		}
		c.mu.Unlock()

		c.metrics.fetchStarted()
		defer c.metrics.fetchDone()
		// the fetch outlives the request that started it
		v, fErr := fetch(context.WithoutCancel(ctx))
		c.store(key, version, v, fErr)
		return v, fErr
	})

	select {
	case <-ctx.Done():
		return nil, nil, true
	case res := <-ch:
		switch {
		case res.Err != nil:
			c.metrics.request("read", outcomeError)
		case res.Shared:
			c.metrics.request("read", outcomeShared)
		default:
			c.metrics.request("read", outcomeMiss)
		}
		return res.Val, res.Err, false
	}
}

// store records a fetch outcome. A fetch that started before an invalidation still delivers
// its data, but the entry stays stale so that the next read refetches. An outcome older than
// the data already held is dropped.
func (c *Cache) store(key string, version uint64, val interface{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	if e.inflight > 0 {
		e.inflight--
	}
	if e.hasData && e.dataOf > version {
		return
	}
	if err != nil {
		e.err = err
		return
	}
	e.data = val
	e.hasData = true
	e.dataOf = version
	e.err = nil
	e.fetchedAt = c.now()
	e.stale = e.version != version
}

// peek returns what the cache holds for key without fetching.
func (c *Cache) peek(key string) (val interface{}, err error, hasData, loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil, false, false
	}
	e.lastUsed = c.now()
	return e.data, e.err, e.hasData, e.inflight > 0
}

// Invalidate marks every read providing one of tags as stale.
func (c *Cache) Invalidate(tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		for key := range c.tagIndex[tag] {
			if e, ok := c.entries[key]; ok {
				e.stale = true
				e.version++
			}
		}
		c.metrics.invalidated(tag)
	}
}

// Len returns the number of cached reads.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) indexLocked(key string, tags []Tag) {
	for _, tag := range tags {
		keys, ok := c.tagIndex[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// pruneLocked drops reads unused for longer than keepFor. It runs at most twice per keepFor.
func (c *Cache) pruneLocked(now time.Time) {
	if now.Sub(c.lastPrune) < c.keepFor/2 {
		return
	}
	c.lastPrune = now
	for key, e := range c.entries {
		if e.inflight > 0 || now.Sub(e.lastUsed) <= c.keepFor {
			continue
		}
		delete(c.entries, key)
		for _, tag := range e.tags {
			delete(c.tagIndex[tag], key)
		}
	}
}
