package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/errors"
)

// Entry is one static knowledge snippet attached to an agent type.
type Entry struct {
	Topic   string `yaml:"topic"`
	Content string `yaml:"content"`
}

// Base holds the per-agent knowledge sets in declared order. Entries are
// loaded once at startup; the prompt composer reads them on every turn.
type Base struct {
	entries map[agent.Type][]Entry
}

func NewBase() *Base {
	return &Base{entries: make(map[agent.Type][]Entry)}
}

// Builtin returns the default knowledge base shipped with the binary.
func Builtin() *Base {
	b := NewBase()

	b.Add(agent.TypeRemovalDefense,
		Entry{Topic: "bond hearings", Content: "Detained clients may be eligible for a bond hearing before an immigration judge; request one as early as possible."},
		Entry{Topic: "one-year filing deadline", Content: "Asylum applications generally must be filed within one year of arrival; late filing needs changed or extraordinary circumstances."},
		Entry{Topic: "cancellation of removal", Content: "Non-LPR cancellation requires ten years of continuous presence, good moral character, and exceptional hardship to a qualifying relative."},
	)

	b.Add(agent.TypeAffirmativeImmigration,
		Entry{Topic: "family petitions", Content: "Immediate relatives of US citizens have no visa backlog; other family categories wait on the visa bulletin."},
		Entry{Topic: "naturalization", Content: "Naturalization generally requires five years as a permanent resident, three if married to a US citizen."},
	)

	b.Add(agent.TypePersonalInjury,
		Entry{Topic: "statute of limitations", Content: "Personal injury claims in Texas must usually be filed within two years of the incident."},
		Entry{Topic: "medical records", Content: "Ask the client to keep every medical bill and record; they anchor the demand package."},
	)

	b.Add(agent.TypeCriminalDefense,
		Entry{Topic: "immigration consequences", Content: "Certain convictions trigger removal proceedings; flag any non-citizen criminal client for an immigration consult."},
	)

	b.Add(agent.TypeWorkersComp,
		Entry{Topic: "reporting deadline", Content: "Workplace injuries must be reported to the employer within 30 days in Texas."},
	)

	b.Add(agent.TypeFamilyLaw,
		Entry{Topic: "residency requirement", Content: "Filing for divorce in Texas requires six months of state residency and 90 days in the county."},
	)

	b.Add(agent.TypeEmergencyAfterHours,
		Entry{Topic: "detainee locator", Content: "ICE's online detainee locator can confirm where someone is held; get the person's full name and country of birth, A-number if known."},
		Entry{Topic: "do not sign", Content: "Advise families that a detained person should not sign anything before speaking with a lawyer, especially a stipulated removal order."},
	)

	return b
}

// Add appends entries for an agent type, preserving declaration order.
func (b *Base) Add(agentType agent.Type, entries ...Entry) {
	b.entries[agentType] = append(b.entries[agentType], entries...)
}

// Get returns the entries declared for an agent type, in order. The
// returned slice is a copy.
func (b *Base) Get(agentType agent.Type) []Entry {
	entries := b.entries[agentType]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Types returns every agent type that has at least one entry.
func (b *Base) Types() []agent.Type {
	out := make([]agent.Type, 0, len(b.entries))
	for t := range b.entries {
		out = append(out, t)
	}
	return out
}

// LoadFile merges a YAML knowledge file into the base. File entries for
// an agent type replace the built-in set for that type.
func (b *Base) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read knowledge file")
	}

	var parsed map[string][]Entry
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.WrapWithCategory(err, "parse knowledge file", errors.ErrInvalidInput)
	}

	for key, entries := range parsed {
		for _, e := range entries {
			if e.Topic == "" || e.Content == "" {
				return errors.InvalidInput(fmt.Sprintf("knowledge entry for %s missing topic or content", key))
			}
		}
		b.entries[agent.Type(key)] = entries
	}

	return nil
}
