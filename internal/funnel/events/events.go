// Package events defines the funnel's domain events. Subscribers (the
// notification module) react to these without coupling to the service.
package events

import (
	"outreach_backend/internal/funnel/domain"
	"outreach_backend/platform/events"

	"github.com/google/uuid"
)

// Event names for subscription.
const (
	LeadCreatedName       = "funnel.lead.created"
	LeadStatusChangedName = "funnel.lead.status_changed"
	LeadRepliedName       = "funnel.lead.replied"
	LeadQualifiedName     = "funnel.lead.qualified"
)

// LeadCreated is published after a lead is persisted.
type LeadCreated struct {
	events.BaseEvent
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
}

func (e LeadCreated) EventName() string { return LeadCreatedName }

// LeadStatusChanged is published once per committed move, carrying the full
// hop chain of that move.
type LeadStatusChanged struct {
	events.BaseEvent
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Actor          string
	Source         string
	Action         *domain.Action
	BeforeStatus   domain.Status
	AfterStatus    domain.Status
}

func (e LeadStatusChanged) EventName() string { return LeadStatusChangedName }

// LeadReplied is published when a reply is first recorded.
type LeadReplied struct {
	events.BaseEvent
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	LeadName       string
}

func (e LeadReplied) EventName() string { return LeadRepliedName }

// LeadQualified is published when a lead reaches QUALIFIED.
type LeadQualified struct {
	events.BaseEvent
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	LeadName       string
}

func (e LeadQualified) EventName() string { return LeadQualifiedName }
