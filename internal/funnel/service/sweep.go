package service

import (
	"context"
	"sync/atomic"

	"outreach_backend/internal/funnel/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// sweepWorkers bounds concurrent per-lead transactions inside one tick.
const sweepWorkers = 8

// defaultSweepBatch is used when a tick arrives without a batch size.
const defaultSweepBatch = 200

// SweepStats summarizes one scheduler tick.
type SweepStats struct {
	Scanned  int
	Advanced int
	Failed   int
}

// RunSweepTick advances every lead whose due timer has elapsed. Each lead is
// processed in its own transaction with the due condition re-checked under
// the row lock, so a concurrent agent action between the scan and the lock
// simply makes the lead a skip, not a conflict. One failing lead never stops
// the rest of the batch.
func (s *Service) RunSweepTick(ctx context.Context, batchSize int) (SweepStats, error) {
	if batchSize <= 0 {
		batchSize = defaultSweepBatch
	}

	now := s.now()
	due, err := s.store.ListDueLeads(ctx, s.engine.Cadence().TimedStatuses(), now, batchSize)
	if err != nil {
		return SweepStats{}, err
	}

	var advanced, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepWorkers)
	for _, lead := range due {
		lead := lead
		g.Go(func() error {
			ok, err := s.sweepLead(ctx, lead.ID, lead.OrganizationID)
			if err != nil {
				failed.Add(1)
				s.log.Error("sweep: lead advance failed",
					"lead_id", lead.ID,
					"organization_id", lead.OrganizationID,
					"error", err)
				return nil
			}
			if ok {
				advanced.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats := SweepStats{
		Scanned:  len(due),
		Advanced: int(advanced.Load()),
		Failed:   int(failed.Load()),
	}
	s.log.SweepOutcome(stats.Scanned, stats.Advanced, stats.Failed)
	return stats, nil
}

// sweepLead advances one due lead along its automatic edge. Returns false
// without error when the lead is no longer due by the time the lock is held.
func (s *Service) sweepLead(ctx context.Context, leadID, organizationID uuid.UUID) (bool, error) {
	var result MoveResult
	moved := false

	err := s.store.InTx(ctx, func(tx repository.TxStore) error {
		lead, err := tx.GetLeadForUpdate(ctx, leadID, organizationID)
		if err != nil {
			return err
		}

		rule, ok := s.engine.Cadence().AutoRuleFor(lead.Status)
		if !ok {
			return nil
		}
		if lead.NextActionDueUtc == nil || lead.NextActionDueUtc.After(s.now()) {
			return nil
		}

		plan, err := s.engine.PlanMove(lead.Status, rule.To)
		if err != nil {
			return err
		}

		updated, err := s.applyPlan(ctx, tx, lead, plan, s.now(), ActorSystem, SourceScheduler, nil, "")
		if err != nil {
			return err
		}

		result = MoveResult{
			Lead:         updated,
			StatusBefore: lead.Status,
			StatusAfter:  updated.Status,
			Hops:         plan.Hops,
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if moved {
		s.publishMove(ctx, result, ActorSystem, SourceScheduler, nil)
	}
	return moved, nil
}
