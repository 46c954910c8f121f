package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/knowledge"
	"github.com/vozlegal/intake/internal/session"
)

// Composer assembles the system prompt for a turn: the agent's static
// template, its knowledge entries, and the live session context. Build
// is pure and deterministic for identical inputs.
type Composer struct {
	registry *agent.Registry
	base     *knowledge.Base
}

func NewComposer(registry *agent.Registry, base *knowledge.Base) *Composer {
	return &Composer{registry: registry, base: base}
}

// Build returns the prompt for an agent, or NotFound for an unregistered
// type. A nil context omits the context section.
func (c *Composer) Build(agentType agent.Type, sessCtx *session.Context) (string, error) {
	def, err := c.registry.Get(agentType)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(def.PromptTemplate)

	if entries := c.base.Get(agentType); len(entries) > 0 {
		b.WriteString("\n\nKey Knowledge:\n")
		for _, entry := range entries {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Topic, entry.Content)
		}
	}

	if sessCtx != nil {
		b.WriteString("\nCurrent Context:\n")
		writeContext(&b, sessCtx)
	}

	return b.String(), nil
}

// writeContext renders the session context as one line per field, with
// collected info keys sorted so output never depends on map order.
func writeContext(b *strings.Builder, sessCtx *session.Context) {
	fmt.Fprintf(b, "- language: %s\n", sessCtx.Language)
	if sessCtx.PreviousAgent != "" {
		fmt.Fprintf(b, "- previous agent: %s\n", sessCtx.PreviousAgent)
	}
	if n := len(sessCtx.TransferHistory); n > 0 {
		last := sessCtx.TransferHistory[n-1]
		fmt.Fprintf(b, "- transfers: %d (last: %s, %q)\n", n, last.To, last.Reason)
	}

	if len(sessCtx.CollectedInfo) > 0 {
		keys := make([]string, 0, len(sessCtx.CollectedInfo))
		for k := range sessCtx.CollectedInfo {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "- %s: %s\n", k, sessCtx.CollectedInfo[k])
		}
	}
}
