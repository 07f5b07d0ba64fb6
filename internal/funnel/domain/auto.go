package domain

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AutoRule is a time-driven edge: a lead that has sat in From for Wait is
// advanced to To by the scheduler. A Wait of zero makes the edge chain
// immediately inside the engine call that entered From.
type AutoRule struct {
	From Status
	To   Status
	Wait time.Duration
}

// Cadence is the closed set of automatic edges with their wait windows.
// The edges are fixed; only the waits are tunable.
type Cadence struct {
	rules map[Status]AutoRule
}

// Default wait windows. WAITING_D1 -> WAITING_D2 is the no-second-touch
// escalation: if the agent never records the second touch inside the window,
// the lead proceeds to the call track.
var defaultWaits = map[Status]time.Duration{
	StatusContacted1: 24 * time.Hour,
	StatusWaitingD1:  72 * time.Hour,
	StatusContacted2: 48 * time.Hour,
	StatusWaitingD2:  24 * time.Hour,
	StatusCalled:     24 * time.Hour,
}

var autoTargets = map[Status]Status{
	StatusContacted1: StatusWaitingD1,
	StatusWaitingD1:  StatusWaitingD2,
	StatusContacted2: StatusWaitingD2,
	StatusWaitingD2:  StatusCallDue,
	StatusCalled:     StatusWaVoiceDue,
}

// DefaultCadence returns the cadence with the default wait windows.
func DefaultCadence() Cadence {
	return newCadence(defaultWaits)
}

func newCadence(waits map[Status]time.Duration) Cadence {
	rules := make(map[Status]AutoRule, len(autoTargets))
	for from, to := range autoTargets {
		rules[from] = AutoRule{From: from, To: to, Wait: waits[from]}
	}
	return Cadence{rules: rules}
}

// AutoRuleFor returns the automatic edge leaving status, if any.
func (c Cadence) AutoRuleFor(status Status) (AutoRule, bool) {
	r, ok := c.rules[status]
	return r, ok
}

// HasTimer reports whether status carries a due timer the scheduler scans.
func (c Cadence) HasTimer(status Status) bool {
	_, ok := c.rules[status]
	return ok
}

// TimedStatuses returns the statuses with due timers in funnel order.
func (c Cadence) TimedStatuses() []Status {
	out := make([]Status, 0, len(c.rules))
	for _, s := range Statuses {
		if c.HasTimer(s) {
			out = append(out, s)
		}
	}
	return out
}

// AutoRules returns the automatic edges in funnel order.
func (c Cadence) AutoRules() []AutoRule {
	out := make([]AutoRule, 0, len(c.rules))
	for _, s := range Statuses {
		if r, ok := c.rules[s]; ok {
			out = append(out, r)
		}
	}
	return out
}

// cadenceFile is the YAML shape of a wait-window override file.
type cadenceFile struct {
	Waits map[string]string `yaml:"waits"`
}

// LoadCadence returns the cadence with wait windows overridden from the
// given YAML file. An empty path returns the default cadence. Only waits for
// statuses that actually carry a timer may be overridden; the edge graph
// itself is not configurable.
func LoadCadence(path string) (Cadence, error) {
	if path == "" {
		return DefaultCadence(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Cadence{}, fmt.Errorf("read cadence file: %w", err)
	}

	var file cadenceFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Cadence{}, fmt.Errorf("parse cadence file: %w", err)
	}

	waits := make(map[Status]time.Duration, len(defaultWaits))
	for s, d := range defaultWaits {
		waits[s] = d
	}

	for name, value := range file.Waits {
		status := Status(name)
		if _, ok := autoTargets[status]; !ok {
			return Cadence{}, fmt.Errorf("cadence file: %q has no due timer", name)
		}
		wait, err := time.ParseDuration(value)
		if err != nil {
			return Cadence{}, fmt.Errorf("cadence file: wait for %q: %w", name, err)
		}
		if wait < 0 {
			return Cadence{}, fmt.Errorf("cadence file: wait for %q must not be negative", name)
		}
		waits[status] = wait
	}

	return newCadence(waits), nil
}
