package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"outreach_backend/internal/funnel/domain"
	"outreach_backend/internal/funnel/repository"

	"github.com/google/uuid"
)

func dueLead(orgID uuid.UUID, status domain.Status, due time.Time) repository.Lead {
	lead := testLead(orgID, status)
	lead.NextActionDueUtc = &due
	return lead
}

func TestSweepAdvancesDueLeads(t *testing.T) {
	store := newMemStore()
	orgID := uuid.New()
	past := time.Now().UTC().Add(-time.Hour)

	contacted := store.addLead(dueLead(orgID, domain.StatusContacted1, past))
	waiting := store.addLead(dueLead(orgID, domain.StatusWaitingD2, past))
	svc, bus := newTestService(t, store, domain.DefaultCadence())

	stats, err := svc.RunSweepTick(context.Background(), 100)
	if err != nil {
		t.Fatalf("RunSweepTick error: %v", err)
	}
	if stats.Scanned != 2 || stats.Advanced != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 2 scanned, 2 advanced", stats)
	}

	got, _ := store.GetLead(context.Background(), contacted.ID, orgID)
	if got.Status != domain.StatusWaitingD1 {
		t.Errorf("CONTACTED_1 lead moved to %q, want WAITING_D1", got.Status)
	}
	if got.NextActionDueUtc == nil {
		t.Error("WAITING_D1 must carry a fresh due timer")
	}

	got, _ = store.GetLead(context.Background(), waiting.ID, orgID)
	if got.Status != domain.StatusCallDue {
		t.Errorf("WAITING_D2 lead moved to %q, want CALL_DUE", got.Status)
	}
	if got.NextActionDueUtc != nil {
		t.Error("CALL_DUE has no automatic successor; timer must be cleared")
	}

	audit, _ := store.ListAudit(context.Background(), contacted.ID, orgID)
	if len(audit) != 1 {
		t.Fatalf("got %d audit rows, want 1", len(audit))
	}
	if audit[0].Actor != ActorSystem || audit[0].Source != SourceScheduler {
		t.Errorf("audit actor/source = %q/%q, want system/scheduler", audit[0].Actor, audit[0].Source)
	}
	if audit[0].Action != nil {
		t.Error("scheduler moves must not record an action")
	}

	names := bus.names()
	if len(names) != 2 {
		t.Errorf("published events = %v, want 2 status changes", names)
	}
}

func TestSweepSkipsNotYetDueLeads(t *testing.T) {
	store := newMemStore()
	orgID := uuid.New()
	future := time.Now().UTC().Add(time.Hour)
	store.addLead(dueLead(orgID, domain.StatusContacted1, future))
	svc, _ := newTestService(t, store, domain.DefaultCadence())

	stats, err := svc.RunSweepTick(context.Background(), 100)
	if err != nil {
		t.Fatalf("RunSweepTick error: %v", err)
	}
	if stats.Scanned != 0 || stats.Advanced != 0 {
		t.Errorf("stats = %+v, want nothing scanned", stats)
	}
}

func TestSweepFailureIsolation(t *testing.T) {
	store := newMemStore()
	orgID := uuid.New()
	past := time.Now().UTC().Add(-time.Hour)

	broken := store.addLead(dueLead(orgID, domain.StatusContacted1, past))
	healthy := store.addLead(dueLead(orgID, domain.StatusWaitingD2, past))
	store.failOnTx[broken.ID] = errors.New("row lock timeout")
	svc, _ := newTestService(t, store, domain.DefaultCadence())

	stats, err := svc.RunSweepTick(context.Background(), 100)
	if err != nil {
		t.Fatalf("RunSweepTick error: %v", err)
	}
	if stats.Advanced != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %+v, want 1 advanced 1 failed", stats)
	}

	got, _ := store.GetLead(context.Background(), healthy.ID, orgID)
	if got.Status != domain.StatusCallDue {
		t.Errorf("healthy lead moved to %q, want CALL_DUE", got.Status)
	}
}

func TestSweepRechecksUnderLock(t *testing.T) {
	store := newMemStore()
	orgID := uuid.New()
	past := time.Now().UTC().Add(-time.Hour)
	lead := store.addLead(dueLead(orgID, domain.StatusContacted1, past))
	svc, _ := newTestService(t, store, domain.DefaultCadence())

	// Simulate an agent action landing between the scan and the per-lead
	// transaction: the lead is already in REPLIED with no timer.
	store.mu.Lock()
	store.leads[lead.ID].Status = domain.StatusReplied
	store.leads[lead.ID].NextActionDueUtc = nil
	store.mu.Unlock()

	moved, err := svc.sweepLead(context.Background(), lead.ID, orgID)
	if err != nil {
		t.Fatalf("sweepLead error: %v", err)
	}
	if moved {
		t.Error("lead no longer due must be skipped, not advanced")
	}
}
