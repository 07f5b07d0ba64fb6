// Package domain provides the canonical outreach funnel model: the status
// and action catalogs, the action transition rule table, and the automatic
// (time-driven) transition table. All other packages derive their view of
// the funnel from this single source of truth.
package domain

// Status is a canonical lead pipeline status.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusContacted1    Status = "CONTACTED_1"
	StatusWaitingD1     Status = "WAITING_D1"
	StatusContacted2    Status = "CONTACTED_2"
	StatusWaitingD2     Status = "WAITING_D2"
	StatusCallDue       Status = "CALL_DUE"
	StatusCalled        Status = "CALLED"
	StatusWaVoiceDue    Status = "WA_VOICE_DUE"
	StatusReplied       Status = "REPLIED"
	StatusQualified     Status = "QUALIFIED"
	StatusNotInterested Status = "NOT_INTERESTED"
	StatusCompleted     Status = "COMPLETED"
)

// Statuses lists every canonical status in funnel order.
var Statuses = []Status{
	StatusNew,
	StatusContacted1,
	StatusWaitingD1,
	StatusContacted2,
	StatusWaitingD2,
	StatusCallDue,
	StatusCalled,
	StatusWaVoiceDue,
	StatusReplied,
	StatusQualified,
	StatusNotInterested,
	StatusCompleted,
}

var knownStatuses = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(Statuses))
	for _, s := range Statuses {
		m[s] = struct{}{}
	}
	return m
}()

// terminalStatuses have no outbound transitions: no action rule lists them
// in its allowed-from set and no automatic edge leaves them.
var terminalStatuses = map[Status]struct{}{
	StatusQualified:     {},
	StatusNotInterested: {},
	StatusCompleted:     {},
}

// IsKnownStatus reports whether s is one of the 12 canonical statuses.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal reports whether s is a terminal status.
func IsTerminal(s Status) bool {
	_, ok := terminalStatuses[s]
	return ok
}

// TerminalStatuses returns the terminal statuses in funnel order.
func TerminalStatuses() []Status {
	out := make([]Status, 0, len(terminalStatuses))
	for _, s := range Statuses {
		if IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}

// NonTerminalStatuses returns every non-terminal status in funnel order.
func NonTerminalStatuses() []Status {
	out := make([]Status, 0, len(Statuses))
	for _, s := range Statuses {
		if !IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}
