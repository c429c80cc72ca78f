// Package schedule evaluates weekly opening-hours strings written in the
// OpenStreetMap opening_hours syntax (the subset establishments actually use).
package schedule

import (
	"fmt"
	"time"
)

// OpenState is the outcome of evaluating a schedule at an instant.
type OpenState int

const (
	Unknown OpenState = iota
	Open
	Closed
)

func (s OpenState) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ParseError reports a schedule string this package cannot read.
type ParseError struct {
	Spec   string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("opening hours %q: %s", e.Spec, e.Reason)
	}
	return fmt.Sprintf("opening hours %q: %s at %q", e.Spec, e.Reason, e.Token)
}

const minutesPerDay = 24 * 60

type ruleState int

const (
	stateOpen ruleState = iota
	stateClosed
	stateUnknown
)

// span is a time range in minutes from midnight of the selected day. end may run
// past minutesPerDay when the range crosses midnight.
type span struct {
	start, end int
	openEnd    bool
}

type rule struct {
	months     [12]bool
	anyMonth   bool
	weekdays   [7]bool // indexed by time.Weekday
	anyWeekday bool
	neverMatch bool // holiday-only selector
	spans      []span
	state      ruleState
	additive   bool // joined with "," to the rule before it
}

func (r *rule) matches(t time.Time) bool {
	if r.neverMatch {
		return false
	}
	if !r.anyMonth && !r.months[int(t.Month())-1] {
		return false
	}
	if !r.anyWeekday && !r.weekdays[t.Weekday()] {
		return false
	}
	return true
}

func (r *rule) openState() OpenState {
	switch r.state {
	case stateOpen:
		return Open
	case stateClosed:
		return Closed
	default:
		return Unknown
	}
}

// stateAt looks for a span of this rule covering minute m of its own day.
func (r *rule) stateAt(m int) (OpenState, bool) {
	if len(r.spans) == 0 {
		return r.openState(), true
	}
	for _, s := range r.spans {
		end := s.end
		if end > minutesPerDay {
			end = minutesPerDay
		}
		if m >= s.start && m < end {
			if s.openEnd {
				return Unknown, true
			}
			return r.openState(), true
		}
	}
	return Closed, false
}

// spillAt looks for a span of the previous day's rule running past midnight into minute m.
func (r *rule) spillAt(m int) (OpenState, bool) {
	for _, s := range r.spans {
		if s.end > minutesPerDay && m < s.end-minutesPerDay {
			return r.openState(), true
		}
	}
	return Closed, false
}

// Schedule is a parsed opening-hours string.
type Schedule struct {
	spec  string
	rules []rule
}

func (s *Schedule) String() string { return s.spec }

// rulesFor returns the rules in force on t's date: the last ";" rule selecting it
// followed by the additional rules after it that select it too.
func (s *Schedule) rulesFor(t time.Time) []*rule {
	var found []*rule
	for i := range s.rules {
		r := &s.rules[i]
		if !r.matches(t) {
			continue
		}
		if r.additive {
			found = append(found, r)
		} else {
			found = []*rule{r}
		}
	}
	return found
}

func closesDay(rules []*rule) bool {
	for _, r := range rules {
		if r.state == stateClosed {
			return true
		}
	}
	return false
}

// StateAt evaluates the schedule at t, using t's own location for day and time of day.
func (s *Schedule) StateAt(t time.Time) OpenState {
	m := t.Hour()*60 + t.Minute()

	today := s.rulesFor(t)
	state, found := Closed, false
	for _, r := range today {
		if st, ok := r.stateAt(m); ok {
			state, found = st, true
		}
	}
	if found {
		return state
	}
	if closesDay(today) {
		return Closed
	}

	if prev := s.rulesFor(t.AddDate(0, 0, -1)); !closesDay(prev) {
		for _, r := range prev {
			if st, ok := r.spillAt(m); ok {
				return st
			}
		}
	}
	return Closed
}

// Evaluate parses spec and evaluates it at at. A nil or unreadable spec yields Unknown.
func Evaluate(spec *string, at time.Time) OpenState {
	if spec == nil {
		return Unknown
	}
	s, err := Parse(*spec)
	if err != nil {
		return Unknown
	}
	return s.StateAt(at)
}
