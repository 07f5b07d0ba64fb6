// Package transport defines the funnel's wire types. Request structs carry
// binding and validation tags; response structs are assembled from domain
// and repository types so storage shapes never leak onto the wire.
package transport

import (
	"time"

	"outreach_backend/internal/funnel/domain"
	"outreach_backend/internal/funnel/engine"
	"outreach_backend/internal/funnel/repository"

	"github.com/google/uuid"
)

// CreateLeadRequest is the lead intake payload.
type CreateLeadRequest struct {
	FirstName string  `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string  `json:"lastName" binding:"required,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     string  `json:"phone" binding:"required,min=5,max=32"`
	Source    *string `json:"source" binding:"omitempty,max=100"`
}

// ActionRequest invokes one agent action against a lead.
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
	Notes  string `json:"notes" binding:"omitempty,max=2000"`
}

// AdvanceRequest moves a lead directly to a target status.
type AdvanceRequest struct {
	TargetStatus string `json:"targetStatus" binding:"required"`
}

// LeadFlags is the one-shot flag block of a lead.
type LeadFlags struct {
	EmailSent1  bool `json:"emailSent1"`
	DmLiSent1   bool `json:"dmLiSent1"`
	DmFbSent1   bool `json:"dmFbSent1"`
	DmIgSent1   bool `json:"dmIgSent1"`
	CallDone    bool `json:"callDone"`
	EmailSent2  bool `json:"emailSent2"`
	DmSent2     bool `json:"dmSent2"`
	WaVoiceSent bool `json:"waVoiceSent"`
}

// LeadResponse is the wire shape of a lead. AvailableActions is derived from
// the rule table for the lead's current status.
type LeadResponse struct {
	ID               uuid.UUID       `json:"id"`
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	Email            *string         `json:"email,omitempty"`
	Phone            string          `json:"phone"`
	Source           *string         `json:"source,omitempty"`
	Status           domain.Status   `json:"status"`
	Flags            LeadFlags       `json:"flags"`
	RepliedAtUtc     *time.Time      `json:"repliedAtUtc,omitempty"`
	Qualified        bool            `json:"qualified"`
	NextActionDueUtc *time.Time      `json:"nextActionDueUtc,omitempty"`
	LastActionUtc    *time.Time      `json:"lastActionUtc,omitempty"`
	Notes            string          `json:"notes"`
	AvailableActions []domain.Action `json:"availableActions"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewLeadResponse maps a stored lead to its wire shape.
func NewLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:        lead.ID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		Status:    lead.Status,
		Flags: LeadFlags{
			EmailSent1:  lead.EmailSent1,
			DmLiSent1:   lead.DmLiSent1,
			DmFbSent1:   lead.DmFbSent1,
			DmIgSent1:   lead.DmIgSent1,
			CallDone:    lead.CallDone,
			EmailSent2:  lead.EmailSent2,
			DmSent2:     lead.DmSent2,
			WaVoiceSent: lead.WaVoiceSent,
		},
		RepliedAtUtc:     lead.RepliedAtUtc,
		Qualified:        lead.Qualified,
		NextActionDueUtc: lead.NextActionDueUtc,
		LastActionUtc:    lead.LastActionUtc,
		Notes:            lead.Notes,
		AvailableActions: domain.AvailableActions(lead.Status),
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
}

// MoveResponse is the outcome of an executed action or direct advance.
type MoveResponse struct {
	Lead         LeadResponse  `json:"lead"`
	Action       *string       `json:"action,omitempty"`
	StatusBefore domain.Status `json:"statusBefore"`
	StatusAfter  domain.Status `json:"statusAfter"`
	Transitions  []engine.Hop  `json:"transitions"`
	NoOp         bool          `json:"noOp,omitempty"`
	RequestID    string        `json:"requestId,omitempty"`
}

// AuditEntryResponse is one wire-shaped audit record.
type AuditEntryResponse struct {
	ID           uuid.UUID      `json:"id"`
	Actor        string         `json:"actor"`
	Source       string         `json:"source"`
	Action       *domain.Action `json:"action,omitempty"`
	Flag         *domain.Flag   `json:"flag,omitempty"`
	BeforeStatus domain.Status  `json:"beforeStatus"`
	AfterStatus  domain.Status  `json:"afterStatus"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// NewAuditResponse maps stored audit entries to their wire shape.
func NewAuditResponse(entries []repository.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			ID:           e.ID,
			Actor:        e.Actor,
			Source:       e.Source,
			Action:       e.Action,
			Flag:         e.Flag,
			BeforeStatus: e.BeforeStatus,
			AfterStatus:  e.AfterStatus,
			CreatedAt:    e.CreatedAt,
		}
	}
	return out
}

// CatalogRule is one action rule in the discovery catalog.
type CatalogRule struct {
	Action      domain.Action   `json:"action"`
	AllowedFrom []domain.Status `json:"allowedFrom"`
	Target      domain.Status   `json:"target"`
	Flag        *domain.Flag    `json:"flag,omitempty"`
}

// CatalogAutoRule is one automatic edge in the discovery catalog.
type CatalogAutoRule struct {
	From        domain.Status `json:"from"`
	To          domain.Status `json:"to"`
	WaitSeconds int64         `json:"waitSeconds"`
}

// CatalogResponse exposes the funnel model for automated callers: every
// status, the terminal set, the full rule table, and the automatic edges
// with their effective waits.
type CatalogResponse struct {
	Statuses         []domain.Status   `json:"statuses"`
	TerminalStatuses []domain.Status   `json:"terminalStatuses"`
	Rules            []CatalogRule     `json:"rules"`
	AutoRules        []CatalogAutoRule `json:"autoRules"`
}

// NewCatalogResponse builds the catalog from the rule tables and cadence.
func NewCatalogResponse(cadence domain.Cadence) CatalogResponse {
	rules := make([]CatalogRule, 0, len(domain.Rules()))
	for _, r := range domain.Rules() {
		entry := CatalogRule{
			Action:      r.Action,
			AllowedFrom: r.AllowedFrom,
			Target:      r.Target,
		}
		if r.Flag != "" {
			f := r.Flag
			entry.Flag = &f
		}
		rules = append(rules, entry)
	}

	auto := make([]CatalogAutoRule, 0)
	for _, r := range cadence.AutoRules() {
		auto = append(auto, CatalogAutoRule{
			From:        r.From,
			To:          r.To,
			WaitSeconds: int64(r.Wait.Seconds()),
		})
	}

	return CatalogResponse{
		Statuses:         domain.Statuses,
		TerminalStatuses: domain.TerminalStatuses(),
		Rules:            rules,
		AutoRules:        auto,
	}
}
