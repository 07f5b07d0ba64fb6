package domain

// Rule describes a single action: the statuses it may be invoked from, the
// status it moves the lead to, and the one-shot flag it records (empty for
// the mark_* actions, which record a timestamp or terminal boolean instead).
type Rule struct {
	Action      Action
	AllowedFrom []Status
	Target      Status
	Flag        Flag
}

// rules is the hand-authored transition table. It is the single source of
// truth consumed by the executor, the engine's edge check, the availability
// query, and the catalog discovery endpoint.
var rules = []Rule{
	{ActionSendEmail1, []Status{StatusNew}, StatusContacted1, FlagEmailSent1},
	{ActionSendDmLi1, []Status{StatusNew}, StatusContacted1, FlagDmLiSent1},
	{ActionSendDmFb1, []Status{StatusNew}, StatusContacted1, FlagDmFbSent1},
	{ActionSendDmIg1, []Status{StatusNew}, StatusContacted1, FlagDmIgSent1},
	{ActionCallDone, []Status{StatusCallDue}, StatusCalled, FlagCallDone},
	{ActionSendEmail2, []Status{StatusWaitingD1}, StatusContacted2, FlagEmailSent2},
	{ActionSendDm2, []Status{StatusWaitingD1}, StatusContacted2, FlagDmSent2},
	{ActionSendWaVoice, []Status{StatusWaVoiceDue}, StatusCompleted, FlagWaVoiceSent},
	{ActionMarkReplied, repliableStatuses(), StatusReplied, ""},
	{ActionMarkQualified, []Status{StatusReplied}, StatusQualified, ""},
	{ActionMarkNotInterested, NonTerminalStatuses(), StatusNotInterested, ""},
}

var rulesByAction = func() map[Action]Rule {
	m := make(map[Action]Rule, len(rules))
	for _, r := range rules {
		m[r.Action] = r
	}
	return m
}()

// repliableStatuses is every non-terminal status except REPLIED itself.
func repliableStatuses() []Status {
	out := make([]Status, 0, len(Statuses))
	for _, s := range NonTerminalStatuses() {
		if s != StatusReplied {
			out = append(out, s)
		}
	}
	return out
}

// Rules returns the full transition table in catalog order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor returns the rule for the given action.
func RuleFor(action Action) (Rule, bool) {
	r, ok := rulesByAction[action]
	return r, ok
}

// IsKnownAction reports whether action is in the catalog.
func IsKnownAction(action Action) bool {
	_, ok := rulesByAction[action]
	return ok
}

// AllowedFromStatus reports whether the rule permits invocation from status.
func (r Rule) AllowedFromStatus(status Status) bool {
	for _, s := range r.AllowedFrom {
		if s == status {
			return true
		}
	}
	return false
}

// AvailableActions returns every action whose allowed-from set contains
// status, in catalog order. This is the only way availability may be
// computed; it is never hand-maintained.
func AvailableActions(status Status) []Action {
	out := make([]Action, 0, len(rules))
	for _, r := range rules {
		if r.AllowedFromStatus(status) {
			out = append(out, r.Action)
		}
	}
	return out
}

// ActionEdgeExists reports whether some action moves a lead from "from"
// directly to "to".
func ActionEdgeExists(from, to Status) bool {
	for _, r := range rules {
		if r.Target == to && r.AllowedFromStatus(from) {
			return true
		}
	}
	return false
}
