package repository

import (
	"context"
	"errors"
	"time"

	"outreach_backend/internal/funnel/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lead does not exist inside the caller's
// organization scope.
var ErrNotFound = errors.New("lead not found")

// ErrVersionConflict is returned when an optimistic status update lost a
// race: the row's version no longer matches the one the caller loaded.
var ErrVersionConflict = errors.New("lead was modified concurrently")

// Lead is the single mutable entity the funnel core operates on.
type Lead struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	FirstName        string
	LastName         string
	Email            *string
	Phone            string
	Source           *string
	Status           domain.Status
	EmailSent1       bool
	DmLiSent1        bool
	DmFbSent1        bool
	DmIgSent1        bool
	CallDone         bool
	EmailSent2       bool
	DmSent2          bool
	WaVoiceSent      bool
	RepliedAtUtc     *time.Time
	Qualified        bool
	NextActionDueUtc *time.Time
	LastActionUtc    *time.Time
	Notes            string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FlagValue returns the current value of a one-shot flag.
func (l Lead) FlagValue(flag domain.Flag) bool {
	switch flag {
	case domain.FlagEmailSent1:
		return l.EmailSent1
	case domain.FlagDmLiSent1:
		return l.DmLiSent1
	case domain.FlagDmFbSent1:
		return l.DmFbSent1
	case domain.FlagDmIgSent1:
		return l.DmIgSent1
	case domain.FlagCallDone:
		return l.CallDone
	case domain.FlagEmailSent2:
		return l.EmailSent2
	case domain.FlagDmSent2:
		return l.DmSent2
	case domain.FlagWaVoiceSent:
		return l.WaVoiceSent
	default:
		return false
	}
}

// AuditEntry is one append-only record of a status transition.
type AuditEntry struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Actor          string
	Source         string
	Action         *domain.Action
	Flag           *domain.Flag
	BeforeStatus   domain.Status
	AfterStatus    domain.Status
	CreatedAt      time.Time
}

// CreateLeadParams contains parameters for creating a lead.
type CreateLeadParams struct {
	OrganizationID uuid.UUID
	FirstName      string
	LastName       string
	Email          *string
	Phone          string
	Source         *string
}

// UpdateStatusParams describes a compare-and-swap status write. The update
// applies only when the row's version equals ExpectedVersion; the version is
// bumped on success. NextActionDueUtc replaces the due timer (nil clears it).
type UpdateStatusParams struct {
	LeadID           uuid.UUID
	OrganizationID   uuid.UUID
	ExpectedVersion  int
	Status           domain.Status
	NextActionDueUtc *time.Time
	TouchLastAction  bool
}

// ListLeadsParams filters the org-scoped lead listing.
type ListLeadsParams struct {
	OrganizationID uuid.UUID
	Status         *domain.Status
	Limit          int
}

// Store is the read side plus the transaction boundary. Every query is
// organization-scoped except ListDueLeads, which the system-level scheduler
// sweep uses across tenants.
type Store interface {
	CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error)
	GetLead(ctx context.Context, id, organizationID uuid.UUID) (Lead, error)
	ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, error)
	ListAudit(ctx context.Context, leadID, organizationID uuid.UUID) ([]AuditEntry, error)
	ListDueLeads(ctx context.Context, statuses []domain.Status, now time.Time, limit int) ([]Lead, error)

	// InTx runs fn inside one transaction; the TxStore passed to fn is only
	// valid for the duration of the call.
	InTx(ctx context.Context, fn func(TxStore) error) error
}

// TxStore is the write side, only reachable inside InTx. GetLeadForUpdate
// takes a row lock so concurrent mutations of the same lead serialize
// without contending across leads.
type TxStore interface {
	GetLeadForUpdate(ctx context.Context, id, organizationID uuid.UUID) (Lead, error)
	SetFlag(ctx context.Context, id, organizationID uuid.UUID, flag domain.Flag) error
	SetReplied(ctx context.Context, id, organizationID uuid.UUID, at time.Time) error
	SetQualified(ctx context.Context, id, organizationID uuid.UUID) error
	AppendNote(ctx context.Context, id, organizationID uuid.UUID, note string) error
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (Lead, error)
	InsertAudit(ctx context.Context, entry AuditEntry) error
}
