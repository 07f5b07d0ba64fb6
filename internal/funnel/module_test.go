package funnel

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach_backend/internal/funnel/domain"
	apphttp "outreach_backend/internal/http"
	"outreach_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func newTestRouterContext(t *testing.T) (*gin.Engine, *apphttp.RouterContext) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	v1 := engine.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	})

	return engine, &apphttp.RouterContext{
		Engine:      engine,
		V1:          v1,
		Protected:   protected,
		Idempotency: func(c *gin.Context) { c.Next() },
	}
}

func TestCatalogServedWithoutCredentials(t *testing.T) {
	engine, ctx := newTestRouterContext(t)
	NewModule(nil, domain.DefaultCadence(), logger.New("development")).RegisterRoutes(ctx)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/funnel/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body=%s)", rec.Code, rec.Body.String())
	}
}

func TestLeadRoutesRequireCredentials(t *testing.T) {
	engine, ctx := newTestRouterContext(t)
	NewModule(nil, domain.DefaultCadence(), logger.New("development")).RegisterRoutes(ctx)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/leads"},
		{http.MethodPost, "/api/v1/leads"},
	} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, rec.Code)
		}
	}
}
