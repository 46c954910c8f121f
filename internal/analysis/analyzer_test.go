package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intakeErrors "github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/model/contract"
)

type fakeRouter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if len(req.Messages) > 0 {
		f.prompts = append(f.prompts, req.Messages[0].Content)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &contract.CompletionResponse{Content: f.response}, nil
}

func (f *fakeRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	return nil, intakeErrors.InvalidInput("embedding not supported")
}

func (f *fakeRouter) ListModels() []string { return nil }

func (f *fakeRouter) Health(ctx context.Context) error { return nil }

func TestFallbackUrgencyRules(t *testing.T) {
	a := NewAnalyzer(nil, "", 0)

	tests := []struct {
		name  string
		facts CaseFacts
		want  Urgency
	}{
		{"detained is critical", CaseFacts{IsDetained: true}, UrgencyCritical},
		{"detained with court date still critical", CaseFacts{IsDetained: true, CourtDate: "2026-09-15"}, UrgencyCritical},
		{"court date is high", CaseFacts{CourtDate: "2026-09-15"}, UrgencyHigh},
		{"otherwise standard", CaseFacts{YearsInUS: 12}, UrgencyStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := a.AnalyzeRemovalDefenseCase(context.Background(), tt.facts)
			assert.Equal(t, tt.want, out.Urgency)
			// Fallback always fills the full shape.
			assert.NotNil(t, out.CandidateDefenses)
			assert.NotEmpty(t, out.ImmediateActions)
			assert.NotEmpty(t, out.TimelineEstimate)
			assert.NotEmpty(t, out.StrategySummary)
		})
	}
}

func TestFallbackLongPresenceDefense(t *testing.T) {
	a := NewAnalyzer(nil, "", 0)

	out := a.AnalyzeRemovalDefenseCase(context.Background(), CaseFacts{YearsInUS: 11, FamilyTies: []string{"US citizen spouse"}})
	assert.Contains(t, out.CandidateDefenses, "cancellation of removal (ten-year presence)")
	assert.NotEmpty(t, out.EvidenceChecklist)
}

func TestAnalyze_LLMResponseParsed(t *testing.T) {
	router := &fakeRouter{response: `Urgency: high

Defenses:
- asylum
- cancellation of removal

Immediate Actions:
1. file EOIR-28
2. request the record of proceedings

Evidence:
- country conditions reports

Timeline: master hearing in roughly six months

Strategy: pursue asylum as primary relief.`}

	a := NewAnalyzer(router, "gpt-4o-mini", time.Second)
	out := a.AnalyzeRemovalDefenseCase(context.Background(), CaseFacts{CourtDate: "2026-09-15"})

	assert.Equal(t, UrgencyHigh, out.Urgency)
	assert.Equal(t, []string{"asylum", "cancellation of removal"}, out.CandidateDefenses)
	assert.Equal(t, []string{"file EOIR-28", "request the record of proceedings"}, out.ImmediateActions)
	assert.Equal(t, []string{"country conditions reports"}, out.EvidenceChecklist)
	assert.Equal(t, "master hearing in roughly six months", out.TimelineEstimate)
	assert.Equal(t, "pursue asylum as primary relief.", out.StrategySummary)
}

func TestAnalyze_MalformedResponseDegrades(t *testing.T) {
	router := &fakeRouter{response: "I'm sorry, I can't structure that for you right now."}

	a := NewAnalyzer(router, "gpt-4o-mini", time.Second)
	out := a.AnalyzeRemovalDefenseCase(context.Background(), CaseFacts{IsDetained: true})

	// Unparseable sections become empty lists; urgency falls back to the
	// rule-based value. Never an error.
	assert.Equal(t, UrgencyCritical, out.Urgency)
	assert.Empty(t, out.CandidateDefenses)
	assert.Empty(t, out.ImmediateActions)
	assert.Empty(t, out.EvidenceChecklist)
}

func TestAnalyze_LLMErrorFallsBack(t *testing.T) {
	router := &fakeRouter{err: intakeErrors.ExternalService("upstream down")}

	a := NewAnalyzer(router, "gpt-4o-mini", time.Second)
	out := a.AnalyzeRemovalDefenseCase(context.Background(), CaseFacts{IsDetained: true})

	assert.Equal(t, UrgencyCritical, out.Urgency)
	assert.NotEmpty(t, out.ImmediateActions)
}

func TestAnalyze_PromptContainsFacts(t *testing.T) {
	router := &fakeRouter{response: "Urgency: standard"}

	a := NewAnalyzer(router, "gpt-4o-mini", time.Second)
	a.AnalyzeRemovalDefenseCase(context.Background(), CaseFacts{
		IsDetained:        true,
		DetentionFacility: "Port Isabel",
		YearsInUS:         8,
	})

	require.Len(t, router.prompts, 1)
	assert.Contains(t, router.prompts[0], "Port Isabel")
	assert.Contains(t, router.prompts[0], "Years in the US: 8")
}

func TestAnalyzeBondMotion_Fallback(t *testing.T) {
	a := NewAnalyzer(nil, "", 0)

	out := a.AnalyzeBondMotion(context.Background(), BondFacts{
		DetentionFacility: "Port Isabel",
		EmploymentYears:   5,
		CommunityTies:     []string{"church volunteer"},
	})

	assert.Equal(t, UrgencyCritical, out.Urgency)
	assert.Contains(t, out.SupportingFactors, "established community ties")
	assert.Contains(t, out.SupportingFactors, "stable employment history")
	assert.Contains(t, out.SupportingFactors, "no criminal history")
	assert.NotEmpty(t, out.EvidenceChecklist)
}

func TestAnalyzeBondMotion_LLMResponseParsed(t *testing.T) {
	router := &fakeRouter{response: `Urgency: critical

Supporting Factors:
- five years at the same employer

Immediate Actions:
- gather sponsor letters

Evidence:
- pay stubs

Timeline: hearing within three weeks

Strategy: emphasize stability and minimal flight risk.`}

	a := NewAnalyzer(router, "gpt-4o-mini", time.Second)
	out := a.AnalyzeBondMotion(context.Background(), BondFacts{DetentionFacility: "Port Isabel"})

	assert.Equal(t, UrgencyCritical, out.Urgency)
	assert.Equal(t, []string{"five years at the same employer"}, out.SupportingFactors)
	assert.Equal(t, []string{"gather sponsor letters"}, out.ImmediateActions)
	assert.Equal(t, "hearing within three weeks", out.TimelineEstimate)
}

func TestSplitSections(t *testing.T) {
	raw := "preamble to ignore\nUrgency: high\nDefenses:\n- one\n- two\n\nTimeline: soon"
	sections := splitSections(raw)

	assert.Equal(t, []string{"high"}, sections[sectionUrgency])
	assert.Equal(t, []string{"- one", "- two"}, sections[sectionDefenses])
	assert.Equal(t, []string{"soon"}, sections[sectionTimeline])
	assert.Empty(t, sections[sectionEvidence])
}

func TestBulletItems(t *testing.T) {
	items := bulletItems([]string{"- first", "* second", "3. third", "  ", "plain"})
	assert.Equal(t, []string{"first", "second", "third", "plain"}, items)
}

func TestMissingSections(t *testing.T) {
	complete := splitSections("Urgency: high\nDefenses:\n- one")
	assert.NoError(t, missingSections(complete, sectionUrgency, sectionDefenses))

	partial := splitSections("Urgency: high")
	err := missingSections(partial, sectionUrgency, sectionDefenses, sectionTimeline)
	require.Error(t, err)
	assert.True(t, intakeErrors.IsCategory(err, intakeErrors.ErrParse))
	assert.Contains(t, err.Error(), sectionDefenses)
	assert.Contains(t, err.Error(), sectionTimeline)
	assert.NotContains(t, err.Error(), sectionUrgency+",")
}
