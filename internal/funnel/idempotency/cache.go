// Package idempotency replays previously completed mutating requests.
// A client that retries a request with the same Idempotency-Key gets the
// stored first response back instead of re-executing the mutation.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoredResponse is the replayable part of a completed response.
type StoredResponse struct {
	StatusCode int       `json:"status_code"`
	Body       []byte    `json:"body"`
	StoredAt   time.Time `json:"stored_at"`
}

// Cache stores responses keyed by an opaque composite key. Get returns
// ok=false for missing or expired entries; implementations check expiry on
// read and never run background timers.
type Cache interface {
	Get(ctx context.Context, key string) (StoredResponse, bool, error)
	Set(ctx context.Context, key string, response StoredResponse) error
}

// CompositeKey derives the cache key from the organization and the client's
// idempotency key. Scoping by organization keeps tenants from colliding on
// (or probing) each other's keys.
func CompositeKey(organizationID uuid.UUID, idempotencyKey string) string {
	sum := sha256.Sum256([]byte(organizationID.String() + ":" + idempotencyKey))
	return hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	response  StoredResponse
	expiresAt time.Time
}

// MemoryCache is an in-process Cache with lazy expiry. It backs tests and
// serves as the fallback when Redis is unreachable.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the cache's clock. Test hook.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (StoredResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return StoredResponse{}, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return StoredResponse{}, false, nil
	}
	return entry.response, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, response StoredResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{
		response:  response,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}
