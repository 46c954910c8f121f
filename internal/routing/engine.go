package routing

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vozlegal/intake/internal/agent"
)

// Context is the slice of conversation state routing needs. An empty
// PreviousAgent marks the first turn of a conversation.
type Context struct {
	PreviousAgent agent.Type
}

// Engine maps an inbound message plus conversation context to the agent
// type that should handle the turn. Decisions are deterministic; the only
// external input is the clock, injected for testability.
type Engine struct {
	registry  *agent.Registry
	evaluator *agent.Evaluator
	now       func() time.Time
}

func NewEngine(registry *agent.Registry, evaluator *agent.Evaluator, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		registry:  registry,
		evaluator: evaluator,
		now:       now,
	}
}

// Route picks the agent for one turn. Priority order:
//
//  1. preferred agent, if registered and currently staffed
//  2. classification on the first turn of a conversation
//  3. emergency phrase short circuit
//  4. direct phrase table, declaration order
//  5. classification fallback
//
// Route never fails: an unregistered preferred agent falls through to
// normal routing, and unrecognized input lands on the classification agent.
func (e *Engine) Route(input string, ctx Context, preferred agent.Type) agent.Type {
	if preferred != "" {
		available, err := e.evaluator.IsAvailable(preferred, e.now())
		if err != nil {
			slog.Warn("Preferred agent not registered, falling through", "agent", preferred)
		} else if available {
			slog.Debug("Routing to preferred agent", "agent", preferred)
			return preferred
		}
	}

	// Every new conversation triages through classification first, even
	// when the opener matches an emergency phrase. Keyword routing only
	// applies from the second turn on.
	if ctx.PreviousAgent == "" {
		slog.Debug("Cold start, routing to classification")
		return agent.TypeClassification
	}

	lower := strings.ToLower(input)

	for _, phrase := range emergencyPhrases {
		if strings.Contains(lower, phrase) {
			slog.Info("Emergency phrase matched", "phrase", phrase)
			return agent.TypeEmergencyAfterHours
		}
	}

	for _, route := range directRoutes {
		if strings.Contains(lower, route.Phrase) {
			slog.Debug("Direct phrase matched", "phrase", route.Phrase, "agent", route.Agent)
			return route.Agent
		}
	}

	return agent.TypeClassification
}
