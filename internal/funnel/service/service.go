// Package service implements the funnel's use cases: lead intake, action
// execution, direct advances, and the scheduler sweep. All status mutations
// funnel through one transactional path so the row lock, the one-shot
// checks, the engine plan, and the audit rows commit or roll back together.
package service

import (
	"context"
	"fmt"
	"time"

	"outreach_backend/internal/funnel/domain"
	"outreach_backend/internal/funnel/engine"
	funnelevents "outreach_backend/internal/funnel/events"
	"outreach_backend/internal/funnel/repository"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/phone"
	"outreach_backend/platform/validator"

	"github.com/google/uuid"
)

// Source labels for audit rows.
const (
	SourceAgent     = "agent"
	SourceScheduler = "scheduler"
)

// ActorSystem is the audit actor for scheduler-driven moves.
const ActorSystem = "system"

// Service orchestrates funnel use cases over the store and the engine.
type Service struct {
	store    repository.Store
	engine   *engine.Engine
	bus      events.Bus
	log      *logger.Logger
	validate *validator.Validator
	now      func() time.Time
}

// New creates a Service.
func New(store repository.Store, eng *engine.Engine, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		engine:   eng,
		bus:      bus,
		log:      log,
		validate: val,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Engine exposes the engine for catalog discovery.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// CreateLeadInput carries validated lead intake fields.
type CreateLeadInput struct {
	OrganizationID uuid.UUID `validate:"required"`
	FirstName      string    `validate:"required,max=100"`
	LastName       string    `validate:"required,max=100"`
	Email          *string   `validate:"omitempty,email"`
	Phone          string    `validate:"required,min=5,max=32"`
	Source         *string   `validate:"omitempty,max=100"`
}

// CreateLead normalizes the phone number, persists the lead in NEW, and
// publishes LeadCreated.
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput) (repository.Lead, error) {
	if err := s.validate.Struct(input); err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindValidation, "invalid lead", err).
			WithCode("validation_error")
	}

	lead, err := s.store.CreateLead(ctx, repository.CreateLeadParams{
		OrganizationID: input.OrganizationID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          phone.NormalizeE164(input.Phone),
		Source:         input.Source,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, funnelevents.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
	})
	return lead, nil
}

// GetLead returns a single lead inside the organization scope.
func (s *Service) GetLead(ctx context.Context, id, organizationID uuid.UUID) (repository.Lead, error) {
	return s.store.GetLead(ctx, id, organizationID)
}

// ListLeads returns leads inside the organization scope, optionally filtered
// by status.
func (s *Service) ListLeads(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, error) {
	if params.Status != nil && !domain.IsKnownStatus(*params.Status) {
		return nil, &domain.EngineRejectedError{
			Current: *params.Status,
			Target:  *params.Status,
			Reason:  "status filter is not a canonical status",
		}
	}
	return s.store.ListLeads(ctx, params)
}

// ListAudit returns the transition history for a lead, oldest first. The
// lead's existence is checked so a caller probing another tenant's lead gets
// not-found instead of an empty history.
func (s *Service) ListAudit(ctx context.Context, leadID, organizationID uuid.UUID) ([]repository.AuditEntry, error) {
	if _, err := s.store.GetLead(ctx, leadID, organizationID); err != nil {
		return nil, err
	}
	return s.store.ListAudit(ctx, leadID, organizationID)
}

// ExecuteActionInput carries one action invocation.
type ExecuteActionInput struct {
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Actor          string
	Action         domain.Action
	Notes          string
}

// MoveResult is the outcome of a committed status move.
type MoveResult struct {
	Lead         repository.Lead
	StatusBefore domain.Status
	StatusAfter  domain.Status
	Hops         []engine.Hop
	NoOp         bool
}

// ExecuteAction runs one agent action against a lead: rule lookup, one-shot
// and reply guards, engine plan, side effects, status CAS, and one audit row
// per hop, all in one transaction. Events publish only after commit.
func (s *Service) ExecuteAction(ctx context.Context, input ExecuteActionInput) (MoveResult, error) {
	if !domain.IsKnownAction(input.Action) {
		return MoveResult{}, &domain.UnknownActionError{Action: input.Action}
	}
	rule, _ := domain.RuleFor(input.Action)

	var result MoveResult
	err := s.store.InTx(ctx, func(tx repository.TxStore) error {
		lead, err := tx.GetLeadForUpdate(ctx, input.LeadID, input.OrganizationID)
		if err != nil {
			return err
		}

		if !rule.AllowedFromStatus(lead.Status) {
			return &domain.InvalidTransitionError{
				Action:         input.Action,
				CurrentStatus:  lead.Status,
				AllowedFrom:    rule.AllowedFrom,
				AllowedActions: domain.AvailableActions(lead.Status),
				TargetStatus:   rule.Target,
			}
		}
		if input.Action == domain.ActionMarkReplied && lead.RepliedAtUtc != nil {
			return &domain.AlreadyRepliedError{}
		}
		if rule.Flag != "" && lead.FlagValue(rule.Flag) {
			return &domain.ActionAlreadyRecordedError{Action: input.Action, Flag: rule.Flag}
		}

		plan, err := s.engine.PlanMove(lead.Status, rule.Target)
		if err != nil {
			return err
		}

		now := s.now()
		if rule.Flag != "" {
			if err := tx.SetFlag(ctx, lead.ID, lead.OrganizationID, rule.Flag); err != nil {
				return err
			}
		}
		if input.Action == domain.ActionMarkReplied {
			if err := tx.SetReplied(ctx, lead.ID, lead.OrganizationID, now); err != nil {
				return err
			}
		}
		if input.Action == domain.ActionMarkQualified {
			if err := tx.SetQualified(ctx, lead.ID, lead.OrganizationID); err != nil {
				return err
			}
		}
		if input.Notes != "" {
			note := fmt.Sprintf("[%s] %s:%s: %s",
				now.Format(time.RFC3339), input.Actor, input.Action, input.Notes)
			if err := tx.AppendNote(ctx, lead.ID, lead.OrganizationID, note); err != nil {
				return err
			}
		}

		action := input.Action
		updated, err := s.applyPlan(ctx, tx, lead, plan, now, input.Actor, SourceAgent, &action, rule.Flag)
		if err != nil {
			return err
		}

		result = MoveResult{
			Lead:         updated,
			StatusBefore: lead.Status,
			StatusAfter:  updated.Status,
			Hops:         plan.Hops,
		}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}

	s.publishMove(ctx, result, input.Actor, SourceAgent, &input.Action)
	return result, nil
}

// AdvanceInput carries a direct status advance request.
type AdvanceInput struct {
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Actor          string
	Source         string
	TargetStatus   domain.Status
}

// AdvanceLead moves a lead directly to the target status, validated against
// the transition graph by the engine. Requesting the lead's current status is
// an accepted no-op. No flags are recorded: advances represent time or
// correction, not touches.
func (s *Service) AdvanceLead(ctx context.Context, input AdvanceInput) (MoveResult, error) {
	var result MoveResult
	err := s.store.InTx(ctx, func(tx repository.TxStore) error {
		lead, err := tx.GetLeadForUpdate(ctx, input.LeadID, input.OrganizationID)
		if err != nil {
			return err
		}

		plan, err := s.engine.PlanMove(lead.Status, input.TargetStatus)
		if err != nil {
			return err
		}
		if plan.NoOp {
			result = MoveResult{
				Lead:         lead,
				StatusBefore: lead.Status,
				StatusAfter:  lead.Status,
				NoOp:         true,
			}
			return nil
		}

		updated, err := s.applyPlan(ctx, tx, lead, plan, s.now(), input.Actor, input.Source, nil, "")
		if err != nil {
			return err
		}

		result = MoveResult{
			Lead:         updated,
			StatusBefore: lead.Status,
			StatusAfter:  updated.Status,
			Hops:         plan.Hops,
		}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}

	if !result.NoOp {
		s.publishMove(ctx, result, input.Actor, input.Source, nil)
	}
	return result, nil
}

// applyPlan persists a plan: one status CAS to the final status plus one
// audit row per hop. The first hop carries the action and flag, chained hops
// carry neither.
func (s *Service) applyPlan(
	ctx context.Context,
	tx repository.TxStore,
	lead repository.Lead,
	plan engine.Plan,
	now time.Time,
	actor, source string,
	action *domain.Action,
	flag domain.Flag,
) (repository.Lead, error) {
	updated, err := tx.UpdateStatus(ctx, repository.UpdateStatusParams{
		LeadID:           lead.ID,
		OrganizationID:   lead.OrganizationID,
		ExpectedVersion:  lead.Version,
		Status:           plan.Final,
		NextActionDueUtc: plan.DueAt(now),
		TouchLastAction:  true,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	for i, hop := range plan.Hops {
		entry := repository.AuditEntry{
			LeadID:         lead.ID,
			OrganizationID: lead.OrganizationID,
			Actor:          actor,
			Source:         source,
			BeforeStatus:   hop.From,
			AfterStatus:    hop.To,
		}
		if i == 0 {
			entry.Action = action
			if flag != "" {
				f := flag
				entry.Flag = &f
			}
		}
		if err := tx.InsertAudit(ctx, entry); err != nil {
			return repository.Lead{}, err
		}
	}
	return updated, nil
}

// publishMove emits the post-commit events for a completed move.
func (s *Service) publishMove(ctx context.Context, result MoveResult, actor, source string, action *domain.Action) {
	s.bus.Publish(ctx, funnelevents.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         result.Lead.ID,
		OrganizationID: result.Lead.OrganizationID,
		Actor:          actor,
		Source:         source,
		Action:         action,
		BeforeStatus:   result.StatusBefore,
		AfterStatus:    result.StatusAfter,
	})

	name := result.Lead.FirstName + " " + result.Lead.LastName
	switch result.StatusAfter {
	case domain.StatusReplied:
		s.bus.Publish(ctx, funnelevents.LeadReplied{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         result.Lead.ID,
			OrganizationID: result.Lead.OrganizationID,
			LeadName:       name,
		})
	case domain.StatusQualified:
		s.bus.Publish(ctx, funnelevents.LeadQualified{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         result.Lead.ID,
			OrganizationID: result.Lead.OrganizationID,
			LeadName:       name,
		})
	}
}
