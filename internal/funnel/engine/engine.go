// Package engine plans canonical status moves for the outreach funnel.
// Given a lead's current status and a requested target, it validates the
// edge against the closed transition graph (action edges plus automatic
// edges) and computes the full chain of hops to apply, including any
// zero-wait automatic follow-ons. The engine is pure: persistence of the
// resulting plan is the caller's responsibility, inside one transaction.
package engine

import (
	"time"

	"outreach_backend/internal/funnel/domain"
)

// Hop is a single applied status transition.
type Hop struct {
	From domain.Status `json:"from"`
	To   domain.Status `json:"to"`
}

// Plan is the outcome of planning a move: the ordered hops to apply, the
// final status, and the due timer for the final status (nil clears it).
// NoOp is set when the requested target equals the current status.
type Plan struct {
	Hops  []Hop
	Final domain.Status
	Wait  *time.Duration
	NoOp  bool
}

// Engine validates and plans status moves against a cadence.
type Engine struct {
	cadence domain.Cadence
}

// New creates an engine over the given cadence.
func New(cadence domain.Cadence) *Engine {
	return &Engine{cadence: cadence}
}

// Cadence returns the cadence the engine plans against.
func (e *Engine) Cadence() domain.Cadence {
	return e.cadence
}

// PlanMove validates current -> target and computes the hop chain.
// Chaining applies automatic rules until none fires; the automatic graph is
// acyclic and the chain is additionally bounded by the status count.
func (e *Engine) PlanMove(current, target domain.Status) (Plan, error) {
	if !domain.IsKnownStatus(target) {
		return Plan{}, &domain.EngineRejectedError{
			Current: current,
			Target:  target,
			Reason:  "target is not a canonical status",
		}
	}
	if !domain.IsKnownStatus(current) {
		return Plan{}, &domain.EngineRejectedError{
			Current: current,
			Target:  target,
			Reason:  "current is not a canonical status",
		}
	}

	if current == target {
		return Plan{Final: current, NoOp: true}, nil
	}

	if domain.IsTerminal(current) {
		return Plan{}, &domain.EngineRejectedError{
			Current: current,
			Target:  target,
			Reason:  "current status is terminal",
		}
	}

	if !e.edgeExists(current, target) {
		return Plan{}, &domain.EngineRejectedError{
			Current: current,
			Target:  target,
			Reason:  "no transition edge from current status to target",
		}
	}

	hops := []Hop{{From: current, To: target}}
	final := target
	for range domain.Statuses {
		rule, ok := e.cadence.AutoRuleFor(final)
		if !ok || rule.Wait != 0 {
			break
		}
		hops = append(hops, Hop{From: final, To: rule.To})
		final = rule.To
	}

	plan := Plan{Hops: hops, Final: final}
	if rule, ok := e.cadence.AutoRuleFor(final); ok {
		wait := rule.Wait
		plan.Wait = &wait
	}
	return plan, nil
}

// edgeExists reports whether current -> target is an action edge or an
// automatic edge.
func (e *Engine) edgeExists(current, target domain.Status) bool {
	if domain.ActionEdgeExists(current, target) {
		return true
	}
	if rule, ok := e.cadence.AutoRuleFor(current); ok && rule.To == target {
		return true
	}
	return false
}

// DueAt computes the absolute due time for a plan's final status, nil when
// the final status carries no timer.
func (p Plan) DueAt(now time.Time) *time.Time {
	if p.Wait == nil {
		return nil
	}
	due := now.Add(*p.Wait)
	return &due
}
