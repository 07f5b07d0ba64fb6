package domain

import (
	"reflect"
	"testing"
)

func TestEveryActionHasExactlyOneRule(t *testing.T) {
	if len(Rules()) != len(Actions) {
		t.Fatalf("rule table has %d entries, want %d", len(Rules()), len(Actions))
	}
	for _, action := range Actions {
		if _, ok := RuleFor(action); !ok {
			t.Errorf("no rule for action %q", action)
		}
	}
}

func TestRuleTableContents(t *testing.T) {
	cases := []struct {
		action      Action
		allowedFrom []Status
		target      Status
		flag        Flag
	}{
		{ActionSendEmail1, []Status{StatusNew}, StatusContacted1, FlagEmailSent1},
		{ActionSendDmLi1, []Status{StatusNew}, StatusContacted1, FlagDmLiSent1},
		{ActionSendDmFb1, []Status{StatusNew}, StatusContacted1, FlagDmFbSent1},
		{ActionSendDmIg1, []Status{StatusNew}, StatusContacted1, FlagDmIgSent1},
		{ActionCallDone, []Status{StatusCallDue}, StatusCalled, FlagCallDone},
		{ActionSendEmail2, []Status{StatusWaitingD1}, StatusContacted2, FlagEmailSent2},
		{ActionSendDm2, []Status{StatusWaitingD1}, StatusContacted2, FlagDmSent2},
		{ActionSendWaVoice, []Status{StatusWaVoiceDue}, StatusCompleted, FlagWaVoiceSent},
		{ActionMarkQualified, []Status{StatusReplied}, StatusQualified, ""},
	}

	for _, tc := range cases {
		rule, ok := RuleFor(tc.action)
		if !ok {
			t.Fatalf("no rule for %q", tc.action)
		}
		if !reflect.DeepEqual(rule.AllowedFrom, tc.allowedFrom) {
			t.Errorf("%q allowedFrom = %v, want %v", tc.action, rule.AllowedFrom, tc.allowedFrom)
		}
		if rule.Target != tc.target {
			t.Errorf("%q target = %q, want %q", tc.action, rule.Target, tc.target)
		}
		if rule.Flag != tc.flag {
			t.Errorf("%q flag = %q, want %q", tc.action, rule.Flag, tc.flag)
		}
	}
}

func TestMarkRepliedAllowedFromEveryNonTerminalExceptReplied(t *testing.T) {
	rule, _ := RuleFor(ActionMarkReplied)

	for _, s := range Statuses {
		want := !IsTerminal(s) && s != StatusReplied
		if got := rule.AllowedFromStatus(s); got != want {
			t.Errorf("mark_replied from %q = %v, want %v", s, got, want)
		}
	}
	if rule.Target != StatusReplied {
		t.Errorf("mark_replied target = %q", rule.Target)
	}
}

func TestMarkNotInterestedAllowedFromEveryNonTerminal(t *testing.T) {
	rule, _ := RuleFor(ActionMarkNotInterested)

	for _, s := range Statuses {
		want := !IsTerminal(s)
		if got := rule.AllowedFromStatus(s); got != want {
			t.Errorf("mark_not_interested from %q = %v, want %v", s, got, want)
		}
	}
}

func TestNoRuleLeavesATerminalStatus(t *testing.T) {
	for _, rule := range Rules() {
		for _, from := range rule.AllowedFrom {
			if IsTerminal(from) {
				t.Errorf("rule %q allows invocation from terminal status %q", rule.Action, from)
			}
		}
	}
}

func TestRuleTargetsAreCanonical(t *testing.T) {
	for _, rule := range Rules() {
		if !IsKnownStatus(rule.Target) {
			t.Errorf("rule %q targets unknown status %q", rule.Action, rule.Target)
		}
		for _, from := range rule.AllowedFrom {
			if !IsKnownStatus(from) {
				t.Errorf("rule %q allows unknown status %q", rule.Action, from)
			}
		}
	}
}

func TestAvailableActions(t *testing.T) {
	cases := []struct {
		status Status
		want   []Action
	}{
		{StatusNew, []Action{
			ActionSendEmail1, ActionSendDmLi1, ActionSendDmFb1, ActionSendDmIg1,
			ActionMarkReplied, ActionMarkNotInterested,
		}},
		{StatusWaitingD1, []Action{
			ActionSendEmail2, ActionSendDm2, ActionMarkReplied, ActionMarkNotInterested,
		}},
		{StatusCallDue, []Action{
			ActionCallDone, ActionMarkReplied, ActionMarkNotInterested,
		}},
		{StatusWaVoiceDue, []Action{
			ActionSendWaVoice, ActionMarkReplied, ActionMarkNotInterested,
		}},
		{StatusReplied, []Action{
			ActionMarkQualified, ActionMarkNotInterested,
		}},
		{StatusQualified, []Action{}},
		{StatusNotInterested, []Action{}},
		{StatusCompleted, []Action{}},
	}

	for _, tc := range cases {
		got := AvailableActions(tc.status)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("AvailableActions(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestActionEdgeExists(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusContacted1, true},
		{StatusWaitingD1, StatusContacted2, true},
		{StatusCallDue, StatusCalled, true},
		{StatusWaVoiceDue, StatusCompleted, true},
		{StatusNew, StatusReplied, true},
		{StatusReplied, StatusQualified, true},
		{StatusCalled, StatusNotInterested, true},
		{StatusNew, StatusCalled, false},
		{StatusContacted1, StatusContacted2, false},
		{StatusQualified, StatusReplied, false},
		{StatusCompleted, StatusNew, false},
	}

	for _, tc := range cases {
		if got := ActionEdgeExists(tc.from, tc.to); got != tc.want {
			t.Errorf("ActionEdgeExists(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	want := []Status{StatusQualified, StatusNotInterested, StatusCompleted}
	if got := TerminalStatuses(); !reflect.DeepEqual(got, want) {
		t.Errorf("TerminalStatuses() = %v, want %v", got, want)
	}
	for _, s := range want {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = false", s)
		}
	}
	if IsTerminal(StatusReplied) {
		t.Error("REPLIED must not be terminal")
	}
}

func TestIsKnownStatusAndAction(t *testing.T) {
	if len(Statuses) != 12 {
		t.Fatalf("status catalog has %d entries, want 12", len(Statuses))
	}
	if len(Actions) != 11 {
		t.Fatalf("action catalog has %d entries, want 11", len(Actions))
	}
	if IsKnownStatus("SHIPPED") {
		t.Error("unknown status accepted")
	}
	if IsKnownAction("send_fax") {
		t.Error("unknown action accepted")
	}
}
