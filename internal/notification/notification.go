// Package notification turns funnel domain events into owner emails.
// Delivery failures are logged and swallowed: notifications never affect
// the transition that triggered them.
package notification

import (
	"context"
	"fmt"

	"outreach_backend/internal/email"
	funnelevents "outreach_backend/internal/funnel/events"
	"outreach_backend/internal/identity"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"

	"github.com/google/uuid"
)

// OrganizationStore resolves the owner email for an organization.
type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (identity.Organization, error)
}

// Notifier subscribes to funnel events and emails organization owners.
type Notifier struct {
	orgs    OrganizationStore
	sender  email.Sender
	log     *logger.Logger
	baseURL string
}

// New creates a Notifier. baseURL is the dashboard root used to build lead
// deep links; empty disables the links.
func New(orgs OrganizationStore, sender email.Sender, log *logger.Logger, baseURL string) *Notifier {
	return &Notifier{orgs: orgs, sender: sender, log: log, baseURL: baseURL}
}

// Subscribe registers the notifier's handlers on the bus.
func (n *Notifier) Subscribe(bus events.Bus) {
	bus.Subscribe(funnelevents.LeadRepliedName, events.HandlerFunc(n.onLeadReplied))
	bus.Subscribe(funnelevents.LeadQualifiedName, events.HandlerFunc(n.onLeadQualified))
}

func (n *Notifier) onLeadReplied(ctx context.Context, event events.Event) error {
	e, ok := event.(funnelevents.LeadReplied)
	if !ok {
		return nil
	}
	owner, err := n.ownerEmail(ctx, e.OrganizationID)
	if err != nil {
		n.log.Warn("notification: owner lookup failed", "organization_id", e.OrganizationID, "error", err)
		return nil
	}
	if err := n.sender.SendLeadRepliedEmail(ctx, owner, e.LeadName, n.leadURL(e.LeadID)); err != nil {
		n.log.Warn("notification: lead replied email failed", "lead_id", e.LeadID, "error", err)
	}
	return nil
}

func (n *Notifier) onLeadQualified(ctx context.Context, event events.Event) error {
	e, ok := event.(funnelevents.LeadQualified)
	if !ok {
		return nil
	}
	owner, err := n.ownerEmail(ctx, e.OrganizationID)
	if err != nil {
		n.log.Warn("notification: owner lookup failed", "organization_id", e.OrganizationID, "error", err)
		return nil
	}
	if err := n.sender.SendLeadQualifiedEmail(ctx, owner, e.LeadName, n.leadURL(e.LeadID)); err != nil {
		n.log.Warn("notification: lead qualified email failed", "lead_id", e.LeadID, "error", err)
	}
	return nil
}

func (n *Notifier) ownerEmail(ctx context.Context, organizationID uuid.UUID) (string, error) {
	org, err := n.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return "", err
	}
	return org.OwnerEmail, nil
}

func (n *Notifier) leadURL(leadID uuid.UUID) string {
	if n.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/leads/%s", n.baseURL, leadID)
}
