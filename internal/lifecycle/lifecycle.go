// Package lifecycle implements the candidate status rules.
//
// Automation may only promote a new candidate to shortlisted. Operator actions
// may move a candidate to any state.
package lifecycle

import (
	"fmt"

	"github.com/jonathan/talent-matcher/internal/types"
)

// DefaultShortlistThreshold is the overall score at which a match promotes a
// new candidate.
const DefaultShortlistThreshold = 80

// EventKind names what triggered a transition.
type EventKind string

// Event kinds. Only EventMatched is automated.
const (
	EventMatched   EventKind = "matched"
	EventShortlist EventKind = "shortlist"
	EventEmailSent EventKind = "email_sent"
	EventReject    EventKind = "reject"
	EventReset     EventKind = "reset"
)

// Event is a single trigger applied to a candidate status.
type Event struct {
	Kind  EventKind
	Score int
}

// Automated reports whether the event comes from the system rather than an operator.
func (e Event) Automated() bool {
	return e.Kind == EventMatched
}

// Matched is the event produced by a completed match computation.
func Matched(score int) Event { return Event{Kind: EventMatched, Score: score} }

// Shortlist is the explicit operator shortlist action.
func Shortlist() Event { return Event{Kind: EventShortlist} }

// EmailSent is raised after the dispatcher confirms delivery.
func EmailSent() Event { return Event{Kind: EventEmailSent} }

// Reject is the explicit operator rejection.
func Reject() Event { return Event{Kind: EventReject} }

// Reset moves a candidate back to new on operator request.
func Reset() Event { return Event{Kind: EventReset} }

// ForStatus maps an operator-requested target status to its event. Contacted
// is only reachable through a confirmed email, so it has no direct event.
func ForStatus(target types.CandidateStatus) (Event, error) {
	switch target {
	case types.CandidateShortlisted:
		return Shortlist(), nil
	case types.CandidateRejected:
		return Reject(), nil
	case types.CandidateNew:
		return Reset(), nil
	case types.CandidateContacted:
		return Event{}, &types.ValidationError{
			Field:   "status",
			Message: "contacted is set by sending an email to the candidate",
		}
	default:
		return Event{}, &types.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", target)}
	}
}

// Machine applies events to candidate statuses.
type Machine struct {
	threshold     int
	autoShortlist bool
}

// Option configures a Machine.
type Option func(*Machine)

// AutoShortlist turns score-based promotion on or off. It is on by default;
// when off, matches record scores and leave every status unchanged.
func AutoShortlist(enabled bool) Option {
	return func(m *Machine) { m.autoShortlist = enabled }
}

// New creates a Machine. A non-positive threshold uses DefaultShortlistThreshold.
func New(threshold int, opts ...Option) *Machine {
	if threshold <= 0 {
		threshold = DefaultShortlistThreshold
	}
	m := &Machine{threshold: threshold, autoShortlist: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the auto-shortlist score.
func (m *Machine) Threshold() int {
	return m.threshold
}

// Apply returns the status that results from applying ev to current.
func (m *Machine) Apply(current types.CandidateStatus, ev Event) (types.CandidateStatus, error) {
	if !current.Valid() {
		return current, &types.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", current)}
	}

	switch ev.Kind {
	case EventMatched:
		// Only new candidates are promoted. Everything else is left alone so a
		// low score never undoes an operator decision.
		if m.autoShortlist && current == types.CandidateNew && ev.Score >= m.threshold {
			return types.CandidateShortlisted, nil
		}
		return current, nil
	case EventShortlist:
		return types.CandidateShortlisted, nil
	case EventEmailSent:
		return types.CandidateContacted, nil
	case EventReject:
		return types.CandidateRejected, nil
	case EventReset:
		return types.CandidateNew, nil
	default:
		return current, fmt.Errorf("unknown lifecycle event %q", ev.Kind)
	}
}
