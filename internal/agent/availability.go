package agent

import (
	"time"
)

// Evaluator answers "is this agent currently staffed?" against wall-clock
// time. The timezone is explicit: availability windows are interpreted in
// the firm's configured location, never ambient server time.
type Evaluator struct {
	registry *Registry
	location *time.Location
}

func NewEvaluator(registry *Registry, location *time.Location) *Evaluator {
	if location == nil {
		location = time.UTC
	}
	return &Evaluator{registry: registry, location: location}
}

// IsAvailable reports whether the agent is staffed at the given instant.
// Returns ErrNotFound for an unregistered type; callers treat that as
// "not available".
func (e *Evaluator) IsAvailable(t Type, now time.Time) (bool, error) {
	def, err := e.registry.Get(t)
	if err != nil {
		return false, err
	}

	local := now.In(e.location)
	if !def.Availability.Contains(local.Weekday()) {
		return false, nil
	}

	// "HH:MM" compares lexically; both boundaries inclusive.
	hhmm := local.Format("15:04")
	hours := def.Availability.Hours
	if hhmm < hours.Start || hhmm > hours.End {
		return false, nil
	}

	return true, nil
}

// Location returns the evaluator's configured timezone.
func (e *Evaluator) Location() *time.Location {
	return e.location
}
