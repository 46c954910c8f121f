package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vozlegal/intake/internal/agent"
)

// 2026-01-05 10:00 UTC is a Monday inside office hours.
func officeHoursClock() func() time.Time {
	fixed, _ := time.Parse("2006-01-02 15:04", "2026-01-05 10:00")
	return func() time.Time { return fixed.UTC() }
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	registry, err := agent.NewRegistry(agent.Builtin())
	require.NoError(t, err)
	evaluator := agent.NewEvaluator(registry, time.UTC)
	return NewEngine(registry, evaluator, officeHoursClock())
}

func TestRoute_ColdStartAlwaysClassifies(t *testing.T) {
	e := newTestEngine(t)

	inputs := []string{
		"hello, I need help",
		"I was in a car accident yesterday",
		"ICE took my husband this morning",
		"necesito un abogado de divorcio",
	}

	for _, input := range inputs {
		got := e.Route(input, Context{}, "")
		assert.Equal(t, agent.TypeClassification, got, "input: %s", input)
	}
}

func TestRoute_EmergencyBeatsDirectRoute(t *testing.T) {
	e := newTestEngine(t)
	ctx := Context{PreviousAgent: agent.TypeClassification}

	// Contains both an emergency phrase and a direct-route phrase; the
	// emergency check runs first.
	got := e.Route("my brother got arrested after a car accident", ctx, "")
	assert.Equal(t, agent.TypeEmergencyAfterHours, got)

	got = e.Route("ICE took my husband this morning", ctx, "")
	assert.Equal(t, agent.TypeEmergencyAfterHours, got)

	got = e.Route("la migra se llevó a mi esposo", ctx, "")
	assert.Equal(t, agent.TypeEmergencyAfterHours, got)
}

func TestRoute_DirectPhrases(t *testing.T) {
	e := newTestEngine(t)
	ctx := Context{PreviousAgent: agent.TypeClassification}

	tests := []struct {
		input string
		want  agent.Type
	}{
		{"I was in a car accident yesterday", agent.TypePersonalInjury},
		{"tuve un accidente de carro", agent.TypePersonalInjury},
		{"I want to renew my green card", agent.TypeAffirmativeImmigration},
		{"quiero mi tarjeta verde", agent.TypeAffirmativeImmigration},
		{"my cousin is facing deportation", agent.TypeRemovalDefense},
		{"I got a DUI last weekend", agent.TypeCriminalDefense},
		{"I was hurt at work on Tuesday", agent.TypeWorkersComp},
		{"I'm thinking about divorce", agent.TypeFamilyLaw},
		{"I want to start a business with my brother", agent.TypeBusinessFormation},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Route(tt.input, ctx, ""))
		})
	}
}

func TestRoute_DeclarationOrderBreaksTies(t *testing.T) {
	e := newTestEngine(t)
	ctx := Context{PreviousAgent: agent.TypeClassification}

	// "green card" appears later in the input than "divorce", but the
	// personal-injury-free table order puts green card first.
	got := e.Route("does my divorce affect my green card", ctx, "")
	assert.Equal(t, agent.TypeAffirmativeImmigration, got)
}

func TestRoute_FallbackToClassification(t *testing.T) {
	e := newTestEngine(t)
	ctx := Context{PreviousAgent: agent.TypeGeneralIntake}

	got := e.Route("I have a question about something", ctx, "")
	assert.Equal(t, agent.TypeClassification, got)
}

func TestRoute_PreferredAgent(t *testing.T) {
	e := newTestEngine(t)
	ctx := Context{PreviousAgent: agent.TypeClassification}

	// Staffed preferred agent wins over keyword matches.
	got := e.Route("I was in a car accident", ctx, agent.TypeFamilyLaw)
	assert.Equal(t, agent.TypeFamilyLaw, got)

	// Unregistered preferred agent falls through to normal routing
	// instead of failing.
	got = e.Route("I was in a car accident", ctx, agent.Type("maritime-law"))
	assert.Equal(t, agent.TypePersonalInjury, got)
}

func TestRoute_PreferredAgentOutsideHours(t *testing.T) {
	registry, err := agent.NewRegistry(agent.Builtin())
	require.NoError(t, err)
	evaluator := agent.NewEvaluator(registry, time.UTC)

	// Monday 03:00: office agents are off, so the preference is ignored.
	night, _ := time.Parse("2006-01-02 15:04", "2026-01-05 03:00")
	e := NewEngine(registry, evaluator, func() time.Time { return night.UTC() })

	ctx := Context{PreviousAgent: agent.TypeClassification}
	got := e.Route("I was in a car accident", ctx, agent.TypeFamilyLaw)
	assert.Equal(t, agent.TypePersonalInjury, got)
}

func TestAnalyzeSignals(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		isEmergency  bool
		needsSpanish bool
		area         LegalArea
	}{
		{"emergency english", "ICE took my husband", true, false, AreaImmigration},
		{"emergency spanish", "la migra se llevó a mi esposo", true, true, AreaImmigration},
		{"injury", "I was injured in a crash", false, false, AreaPersonalInjury},
		{"spanish divorce", "necesito ayuda con mi divorcio", false, true, AreaFamilyLaw},
		{"nothing", "hello there", false, false, AreaNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeSignals(tt.input)
			assert.Equal(t, tt.isEmergency, got.IsEmergency, "IsEmergency")
			assert.Equal(t, tt.needsSpanish, got.NeedsSpanish, "NeedsSpanish")
			assert.Equal(t, tt.area, got.LegalArea, "LegalArea")
		})
	}
}

func TestAnalyzeSignals_IsPure(t *testing.T) {
	input := "ICE took my husband after a car accident"
	first := AnalyzeSignals(input)
	second := AnalyzeSignals(input)
	assert.Equal(t, first, second)
}
