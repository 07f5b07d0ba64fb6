// Package handler exposes the funnel over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"outreach_backend/internal/funnel/domain"
	"outreach_backend/internal/funnel/repository"
	"outreach_backend/internal/funnel/service"
	"outreach_backend/internal/funnel/transport"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadService is the use-case surface the handler needs. Narrowed to an
// interface so handler tests can run against a fake.
type LeadService interface {
	CreateLead(ctx context.Context, input service.CreateLeadInput) (repository.Lead, error)
	GetLead(ctx context.Context, id, organizationID uuid.UUID) (repository.Lead, error)
	ListLeads(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, error)
	ListAudit(ctx context.Context, leadID, organizationID uuid.UUID) ([]repository.AuditEntry, error)
	ExecuteAction(ctx context.Context, input service.ExecuteActionInput) (service.MoveResult, error)
	AdvanceLead(ctx context.Context, input service.AdvanceInput) (service.MoveResult, error)
}

// Handler holds the funnel HTTP handlers.
type Handler struct {
	svc     LeadService
	cadence domain.Cadence
	log     *logger.Logger
}

// New creates a Handler.
func New(svc LeadService, cadence domain.Cadence, log *logger.Logger) *Handler {
	return &Handler{svc: svc, cadence: cadence, log: log}
}

// CreateLead handles POST /leads.
func (h *Handler) CreateLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), service.CreateLeadInput{
		OrganizationID: *identity.TenantID(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Source:         req.Source,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.NewLeadResponse(lead))
}

// ListLeads handles GET /leads.
func (h *Handler) ListLeads(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	params := repository.ListLeadsParams{OrganizationID: *identity.TenantID()}
	if raw := c.Query("status"); raw != "" {
		status := domain.Status(raw)
		if !domain.IsKnownStatus(status) {
			httpkit.Error(c, http.StatusBadRequest, "unknown status filter", gin.H{"status": raw})
			return
		}
		params.Status = &status
	}

	leads, err := h.svc.ListLeads(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		out[i] = transport.NewLeadResponse(lead)
	}
	httpkit.OK(c, gin.H{"leads": out})
}

// GetLead handles GET /leads/:id.
func (h *Handler) GetLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), leadID, *identity.TenantID())
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.NewLeadResponse(lead))
}

// ExecuteAction handles POST /leads/:id/actions.
func (h *Handler) ExecuteAction(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.svc.ExecuteAction(c.Request.Context(), service.ExecuteActionInput{
		LeadID:         leadID,
		OrganizationID: *identity.TenantID(),
		Actor:          identity.Actor(),
		Action:         domain.Action(req.Action),
		Notes:          req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	action := req.Action
	httpkit.OK(c, transport.MoveResponse{
		Lead:         transport.NewLeadResponse(result.Lead),
		Action:       &action,
		StatusBefore: result.StatusBefore,
		StatusAfter:  result.StatusAfter,
		Transitions:  result.Hops,
		RequestID:    httpkit.RequestID(c),
	})
}

// Advance handles POST /leads/:id/advance.
func (h *Handler) Advance(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.svc.AdvanceLead(c.Request.Context(), service.AdvanceInput{
		LeadID:         leadID,
		OrganizationID: *identity.TenantID(),
		Actor:          identity.Actor(),
		Source:         service.SourceAgent,
		TargetStatus:   domain.Status(req.TargetStatus),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.MoveResponse{
		Lead:         transport.NewLeadResponse(result.Lead),
		StatusBefore: result.StatusBefore,
		StatusAfter:  result.StatusAfter,
		Transitions:  result.Hops,
		NoOp:         result.NoOp,
		RequestID:    httpkit.RequestID(c),
	})
}

// ListAudit handles GET /leads/:id/audit.
func (h *Handler) ListAudit(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	entries, err := h.svc.ListAudit(c.Request.Context(), leadID, *identity.TenantID())
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"audit": transport.NewAuditResponse(entries)})
}

// Catalog handles GET /funnel/catalog.
func (h *Handler) Catalog(c *gin.Context) {
	httpkit.OK(c, transport.NewCatalogResponse(h.cadence))
}

func (h *Handler) leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps the typed transition-path errors to their stable wire
// codes; everything unmapped is an internal error.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		unknownAction   *domain.UnknownActionError
		invalidTrans    *domain.InvalidTransitionError
		alreadyRecorded *domain.ActionAlreadyRecordedError
		alreadyReplied  *domain.AlreadyRepliedError
		engineRejected  *domain.EngineRejectedError
		appErr          *apperr.Error
	)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		httpkit.HandleError(c, apperr.NotFound("lead not found").WithCode("not_found"))

	case errors.Is(err, repository.ErrVersionConflict):
		httpkit.HandleError(c, apperr.Conflict("lead was modified concurrently").WithCode("conflict"))

	case errors.As(err, &unknownAction):
		httpkit.HandleError(c, apperr.BadRequest("unknown action").
			WithCode("unknown_action").
			WithDetails(gin.H{"action": unknownAction.Action}))

	// The two rule-guard conflicts are flat bodies, not the shared error
	// envelope: automated callers read allowedActions and flag at top level.
	case errors.As(err, &invalidTrans):
		c.JSON(http.StatusConflict, gin.H{
			"error":          "invalid_transition",
			"action":         invalidTrans.Action,
			"currentStatus":  invalidTrans.CurrentStatus,
			"allowedFrom":    invalidTrans.AllowedFrom,
			"allowedActions": invalidTrans.AllowedActions,
			"targetStatus":   invalidTrans.TargetStatus,
			"message":        "action not allowed from current status",
			"requestId":      httpkit.RequestID(c),
		})

	case errors.As(err, &alreadyRecorded):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "action_already_recorded",
			"action":    alreadyRecorded.Action,
			"flag":      alreadyRecorded.Flag,
			"message":   "action already recorded",
			"requestId": httpkit.RequestID(c),
		})

	case errors.As(err, &alreadyReplied):
		httpkit.HandleError(c, apperr.Conflict("reply already recorded").
			WithCode("already_replied"))

	case errors.As(err, &engineRejected):
		httpkit.HandleError(c, apperr.Conflict("transition rejected").
			WithCode("transition_rejected").
			WithDetails(gin.H{
				"currentStatus": engineRejected.Current,
				"targetStatus":  engineRejected.Target,
				"reason":        engineRejected.Reason,
			}))

	case errors.As(err, &appErr):
		httpkit.HandleError(c, appErr)

	default:
		h.log.Error("unhandled funnel error", "error", err)
		httpkit.HandleError(c, apperr.Internal("internal error").WithCode("internal"))
	}
}
