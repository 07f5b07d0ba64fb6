package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	ctx := context.Background()

	stored := StoredResponse{StatusCode: 200, Body: []byte(`{"ok":true}`)}
	if err := cache.Set(ctx, "k1", stored); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, ok, err := cache.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if got.StatusCode != 200 || string(got.Body) != `{"ok":true}` {
		t.Errorf("got %+v", got)
	}

	if _, ok, _ := cache.Get(ctx, "missing"); ok {
		t.Error("missing key reported present")
	}
}

func TestMemoryCacheExpiresOnRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := NewMemoryCache(24 * time.Hour).WithClock(clock)
	ctx := context.Background()

	if err := cache.Set(ctx, "k1", StoredResponse{StatusCode: 200}); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	now = now.Add(23 * time.Hour)
	if _, ok, _ := cache.Get(ctx, "k1"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := cache.Get(ctx, "k1"); ok {
		t.Fatal("entry survived past its TTL")
	}
}

func TestCompositeKeyScopesByOrganization(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()

	if CompositeKey(orgA, "req-1") == CompositeKey(orgB, "req-1") {
		t.Error("same client key must not collide across organizations")
	}
	if CompositeKey(orgA, "req-1") != CompositeKey(orgA, "req-1") {
		t.Error("key derivation must be deterministic")
	}
	if CompositeKey(orgA, "req-1") == CompositeKey(orgA, "req-2") {
		t.Error("different client keys must not collide")
	}
}
