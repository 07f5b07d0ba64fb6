package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultCadenceEdges(t *testing.T) {
	cadence := DefaultCadence()

	cases := []struct {
		from Status
		to   Status
		wait time.Duration
	}{
		{StatusContacted1, StatusWaitingD1, 24 * time.Hour},
		{StatusWaitingD1, StatusWaitingD2, 72 * time.Hour},
		{StatusContacted2, StatusWaitingD2, 48 * time.Hour},
		{StatusWaitingD2, StatusCallDue, 24 * time.Hour},
		{StatusCalled, StatusWaVoiceDue, 24 * time.Hour},
	}

	for _, tc := range cases {
		rule, ok := cadence.AutoRuleFor(tc.from)
		if !ok {
			t.Fatalf("no automatic edge from %q", tc.from)
		}
		if rule.To != tc.to {
			t.Errorf("auto edge %q -> %q, want -> %q", tc.from, rule.To, tc.to)
		}
		if rule.Wait != tc.wait {
			t.Errorf("auto edge %q wait = %s, want %s", tc.from, rule.Wait, tc.wait)
		}
	}

	if len(cadence.AutoRules()) != len(cases) {
		t.Errorf("cadence has %d edges, want %d", len(cadence.AutoRules()), len(cases))
	}
}

func TestNoAutoEdgeLeavesTerminalOrUnTimedStatuses(t *testing.T) {
	cadence := DefaultCadence()
	for _, s := range []Status{StatusNew, StatusCallDue, StatusWaVoiceDue, StatusReplied,
		StatusQualified, StatusNotInterested, StatusCompleted} {
		if cadence.HasTimer(s) {
			t.Errorf("status %q must not carry a due timer", s)
		}
	}
}

func TestAutoGraphIsAcyclic(t *testing.T) {
	cadence := DefaultCadence()
	for _, start := range Statuses {
		current := start
		for range Statuses {
			rule, ok := cadence.AutoRuleFor(current)
			if !ok {
				current = ""
				break
			}
			current = rule.To
		}
		if current != "" {
			if _, ok := cadence.AutoRuleFor(current); ok {
				t.Fatalf("automatic edges starting at %q do not terminate", start)
			}
		}
	}
}

func TestLoadCadenceEmptyPathReturnsDefaults(t *testing.T) {
	cadence, err := LoadCadence("")
	if err != nil {
		t.Fatalf("LoadCadence(\"\") error: %v", err)
	}
	rule, _ := cadence.AutoRuleFor(StatusContacted1)
	if rule.Wait != 24*time.Hour {
		t.Errorf("default wait = %s, want 24h", rule.Wait)
	}
}

func TestLoadCadenceOverridesWaits(t *testing.T) {
	path := writeCadenceFile(t, "waits:\n  CONTACTED_1: 1h\n  WAITING_D2: 30m\n")

	cadence, err := LoadCadence(path)
	if err != nil {
		t.Fatalf("LoadCadence error: %v", err)
	}

	rule, _ := cadence.AutoRuleFor(StatusContacted1)
	if rule.Wait != time.Hour {
		t.Errorf("CONTACTED_1 wait = %s, want 1h", rule.Wait)
	}
	rule, _ = cadence.AutoRuleFor(StatusWaitingD2)
	if rule.Wait != 30*time.Minute {
		t.Errorf("WAITING_D2 wait = %s, want 30m", rule.Wait)
	}

	// Untouched waits keep their defaults.
	rule, _ = cadence.AutoRuleFor(StatusWaitingD1)
	if rule.Wait != 72*time.Hour {
		t.Errorf("WAITING_D1 wait = %s, want 72h", rule.Wait)
	}

	// Edge targets are never configurable.
	rule, _ = cadence.AutoRuleFor(StatusContacted1)
	if rule.To != StatusWaitingD1 {
		t.Errorf("CONTACTED_1 target = %q, want WAITING_D1", rule.To)
	}
}

func TestLoadCadenceRejectsUnknownStatus(t *testing.T) {
	path := writeCadenceFile(t, "waits:\n  REPLIED: 1h\n")
	if _, err := LoadCadence(path); err == nil {
		t.Fatal("expected error for status without a timer")
	}
}

func TestLoadCadenceRejectsNegativeWait(t *testing.T) {
	path := writeCadenceFile(t, "waits:\n  CONTACTED_1: -5m\n")
	if _, err := LoadCadence(path); err == nil {
		t.Fatal("expected error for negative wait")
	}
}

func TestLoadCadenceRejectsMalformedDuration(t *testing.T) {
	path := writeCadenceFile(t, "waits:\n  CONTACTED_1: soon\n")
	if _, err := LoadCadence(path); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestLoadCadenceMissingFile(t *testing.T) {
	if _, err := LoadCadence(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeCadenceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write cadence file: %v", err)
	}
	return path
}
