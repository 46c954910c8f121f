package agent

import (
	"time"
)

// Hours is a daily staffing window. Start and End are "HH:MM" strings and
// both boundaries are inclusive.
type Hours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Availability is the configured staffed window for an agent.
type Availability struct {
	Days  []time.Weekday `yaml:"-"`
	Hours Hours          `yaml:"hours"`
}

// Contains reports whether the weekday is part of the configured days.
func (a Availability) Contains(day time.Weekday) bool {
	for _, d := range a.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Definition is the immutable configuration of one agent persona. It is
// loaded once at startup and shared read-only afterwards.
type Definition struct {
	Type           Type
	Name           string
	Language       Language
	PromptTemplate string
	Skills         []string
	Availability   Availability
}
