package domain

import "fmt"

// Typed transition-path errors. Automated callers branch on the concrete
// type (handlers map each to a stable wire code), never on message strings.

// UnknownActionError indicates the requested action is outside the catalog.
type UnknownActionError struct {
	Action Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Action)
}

// InvalidTransitionError indicates the lead's current status is not in the
// action's allowed-from set. It carries the actions that ARE valid for the
// current status so a retrying caller can self-correct.
type InvalidTransitionError struct {
	Action         Action
	CurrentStatus  Status
	AllowedFrom    []Status
	AllowedActions []Action
	TargetStatus   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q not allowed from status %q", e.Action, e.CurrentStatus)
}

// ActionAlreadyRecordedError indicates the action's one-shot flag is already
// set. For at-least-once callers this is success-equivalent.
type ActionAlreadyRecordedError struct {
	Action Action
	Flag   Flag
}

func (e *ActionAlreadyRecordedError) Error() string {
	return fmt.Sprintf("action %q already recorded (flag %q is set)", e.Action, e.Flag)
}

// AlreadyRepliedError indicates mark_replied was invoked on a lead whose
// reply timestamp is already set.
type AlreadyRepliedError struct{}

func (e *AlreadyRepliedError) Error() string {
	return "reply already recorded for this lead"
}

// EngineRejectedError indicates the transition engine refused a move that
// passed (or bypassed) the rule table, e.g. a direct advance along a
// nonexistent edge.
type EngineRejectedError struct {
	Current Status
	Target  Status
	Reason  string
}

func (e *EngineRejectedError) Error() string {
	return fmt.Sprintf("transition %s -> %s rejected: %s", e.Current, e.Target, e.Reason)
}
