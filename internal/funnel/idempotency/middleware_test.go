package idempotency

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(t *testing.T, cache Cache, tenantID uuid.UUID, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/mutate",
		func(c *gin.Context) {
			c.Set(httpkit.ContextActorKey, "agent")
			c.Set(httpkit.ContextTenantIDKey, tenantID)
		},
		Middleware(cache, logger.New("development")),
		handler,
	)
	return engine
}

func TestMiddlewareReplaysStoredResponse(t *testing.T) {
	tenantID := uuid.New()
	calls := 0
	router := newTestRouter(t, NewMemoryCache(time.Hour), tenantID, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set(HeaderKey, "req-1")
	router.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set(HeaderKey, "req-1")
	router.ServeHTTP(second, req)

	if calls != 1 {
		t.Fatalf("handler executed %d times, want 1", calls)
	}
	if second.Code != http.StatusOK {
		t.Errorf("replay status = %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replay body %q differs from original %q", second.Body.String(), first.Body.String())
	}
	if second.Header().Get(ReplayedHeader) != "true" {
		t.Error("replayed response missing marker header")
	}
	if first.Header().Get(ReplayedHeader) != "" {
		t.Error("first response must not carry the replay marker")
	}
}

func TestMiddlewareDistinctKeysExecuteSeparately(t *testing.T) {
	tenantID := uuid.New()
	calls := 0
	router := newTestRouter(t, NewMemoryCache(time.Hour), tenantID, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})

	for _, key := range []string{"req-1", "req-2"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
		req.Header.Set(HeaderKey, key)
		router.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Fatalf("handler executed %d times, want 2", calls)
	}
}

func TestMiddlewareWithoutHeaderPassesThrough(t *testing.T) {
	tenantID := uuid.New()
	calls := 0
	router := newTestRouter(t, NewMemoryCache(time.Hour), tenantID, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mutate", nil))
	}

	if calls != 2 {
		t.Fatalf("handler executed %d times, want 2 without header", calls)
	}
}

func TestMiddlewareDoesNotCacheErrors(t *testing.T) {
	tenantID := uuid.New()
	calls := 0
	router := newTestRouter(t, NewMemoryCache(time.Hour), tenantID, func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
		req.Header.Set(HeaderKey, "req-1")
		router.ServeHTTP(rec, req)
	}

	// The 409 was not stored, so the retry re-executed and succeeded.
	if calls != 2 {
		t.Fatalf("handler executed %d times, want 2", calls)
	}
}

func TestMiddlewareRejectsOversizedKey(t *testing.T) {
	tenantID := uuid.New()
	router := newTestRouter(t, NewMemoryCache(time.Hour), tenantID, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set(HeaderKey, strings.Repeat("x", 300))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMiddlewareKeysAreTenantScoped(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	calls := 0
	handler := func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	}

	routerA := newTestRouter(t, cache, uuid.New(), handler)
	routerB := newTestRouter(t, cache, uuid.New(), handler)

	for _, router := range []*gin.Engine{routerA, routerB} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
		req.Header.Set(HeaderKey, "req-1")
		router.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Fatalf("handler executed %d times, want 2: same key must not replay across tenants", calls)
	}
}
