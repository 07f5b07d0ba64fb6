// Package funnel wires the outreach funnel bounded context: the lead
// entity, the transition engine, the action executor, and their HTTP
// surface.
package funnel

import (
	"outreach_backend/internal/funnel/domain"
	"outreach_backend/internal/funnel/handler"
	apphttp "outreach_backend/internal/http"
	"outreach_backend/platform/logger"
)

// Module is the funnel's HTTP module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the funnel module.
func NewModule(svc handler.LeadService, cadence domain.Cadence, log *logger.Logger) *Module {
	return &Module{handler: handler.New(svc, cadence, log)}
}

// Name implements http.Module.
func (m *Module) Name() string { return "funnel" }

// RegisterRoutes mounts the funnel routes. Mutating routes sit behind the
// idempotency middleware so Idempotency-Key replays short-circuit before
// the handler.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.GET("", m.handler.ListLeads)
	leads.GET("/:id", m.handler.GetLead)
	leads.GET("/:id/audit", m.handler.ListAudit)

	mutating := leads.Group("")
	mutating.Use(ctx.Idempotency)
	mutating.POST("", m.handler.CreateLead)
	mutating.POST("/:id/actions", m.handler.ExecuteAction)
	mutating.POST("/:id/advance", m.handler.Advance)

	// The catalog is static funnel metadata with no tenant data, so callers
	// can validate actions before they hold credentials.
	ctx.V1.GET("/funnel/catalog", m.handler.Catalog)
}
