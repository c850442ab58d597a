package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const anonymousKey = "anonymous"

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Cache       Options
	MaxSessions int           // 0: unlimited
	IdleTTL     time.Duration // 0: never expire
}

// Registry holds one Cache per session token so that cached data is never shared between users.
// Idle sessions are evicted after IdleTTL; the least recently used ones beyond MaxSessions as well.
type Registry struct {
	transport Transport
	opts      Options

	mu     sync.Mutex
	caches *expirable.LRU[string, *Cache]
}

func NewRegistry(transport Transport, opts RegistryOptions) *Registry {
	return &Registry{
		transport: transport,
		opts:      opts.Cache,
		caches:    expirable.NewLRU[string, *Cache](opts.MaxSessions, nil, opts.IdleTTL),
	}
}

// For returns the cache of token, creating it if needed.
func (r *Registry) For(token string) *Cache {
	key := sessionKey(token)
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.caches.Get(key)
	if !ok {
		c = NewCache(r.transport, token, r.opts)
	}
	r.caches.Add(key, c) // renews the idle timeout
	return c
}

// Drop drops the cache of token, eg. on sign out or when the token is rejected.
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches.Remove(sessionKey(token))
}

// Len returns the number of live session caches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caches.Len()
}

func sessionKey(token string) string {
	if token == "" {
		return anonymousKey
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
