package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vozlegal/intake/internal/model"
	"github.com/vozlegal/intake/internal/model/contract"
)

// Analyzer produces structured case recommendations. With a model router
// configured it asks the LLM and parses the free-text answer; without one,
// or on any model failure, it falls back to the deterministic rules. LLM
// errors are absorbed here and never reach the caller.
type Analyzer struct {
	router  model.ModelRouter
	model   string
	timeout time.Duration
}

// NewAnalyzer builds an analyzer. A nil router means fallback-only.
func NewAnalyzer(router model.ModelRouter, modelName string, timeout time.Duration) *Analyzer {
	return &Analyzer{router: router, model: modelName, timeout: timeout}
}

func (a *Analyzer) AnalyzeRemovalDefenseCase(ctx context.Context, facts CaseFacts) RemovalDefenseAnalysis {
	fallback := fallbackRemovalDefense(facts)
	if a.router == nil {
		return fallback
	}

	raw, err := a.generate(ctx, removalDefensePrompt(facts))
	if err != nil {
		slog.Warn("Removal defense analysis falling back to rules", "error", err)
		return fallback
	}

	sections := splitSections(raw)
	if err := missingSections(sections,
		sectionUrgency, sectionDefenses, sectionActions, sectionEvidence, sectionTimeline, sectionStrategy,
	); err != nil {
		slog.Warn("Removal defense response partially parsed", "error", err)
	}

	out := RemovalDefenseAnalysis{
		CandidateDefenses: bulletItems(sections[sectionDefenses]),
		ImmediateActions:  bulletItems(sections[sectionActions]),
		EvidenceChecklist: bulletItems(sections[sectionEvidence]),
		TimelineEstimate:  joinProse(sections[sectionTimeline]),
		StrategySummary:   joinProse(sections[sectionStrategy]),
	}

	urgency, ok := parseUrgency(sections[sectionUrgency])
	if !ok {
		slog.Debug("Urgency missing from model response, using rule-based value")
		urgency = fallback.Urgency
	}
	out.Urgency = urgency

	return out
}

func (a *Analyzer) AnalyzeBondMotion(ctx context.Context, facts BondFacts) BondMotionAnalysis {
	fallback := fallbackBondMotion(facts)
	if a.router == nil {
		return fallback
	}

	raw, err := a.generate(ctx, bondMotionPrompt(facts))
	if err != nil {
		slog.Warn("Bond motion analysis falling back to rules", "error", err)
		return fallback
	}

	sections := splitSections(raw)
	if err := missingSections(sections,
		sectionUrgency, sectionFactors, sectionActions, sectionEvidence, sectionTimeline, sectionStrategy,
	); err != nil {
		slog.Warn("Bond motion response partially parsed", "error", err)
	}

	out := BondMotionAnalysis{
		SupportingFactors: bulletItems(sections[sectionFactors]),
		ImmediateActions:  bulletItems(sections[sectionActions]),
		EvidenceChecklist: bulletItems(sections[sectionEvidence]),
		TimelineEstimate:  joinProse(sections[sectionTimeline]),
		StrategySummary:   joinProse(sections[sectionStrategy]),
	}

	urgency, ok := parseUrgency(sections[sectionUrgency])
	if !ok {
		urgency = fallback.Urgency
	}
	out.Urgency = urgency

	return out
}

func (a *Analyzer) generate(ctx context.Context, promptText string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.router.Route(ctx, a.model, contract.CompletionRequest{
		Model: a.model,
		Messages: []contract.Message{
			{Role: "user", Content: promptText},
		},
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return resp.Content, nil
}

func removalDefensePrompt(facts CaseFacts) string {
	var b strings.Builder
	b.WriteString("You are an immigration attorney assessing a removal defense case. Case facts:\n")
	fmt.Fprintf(&b, "- Detained: %t\n", facts.IsDetained)
	if facts.DetentionFacility != "" {
		fmt.Fprintf(&b, "- Detention facility: %s\n", facts.DetentionFacility)
	}
	if facts.CourtDate != "" {
		fmt.Fprintf(&b, "- Court date: %s\n", facts.CourtDate)
	}
	fmt.Fprintf(&b, "- Years in the US: %d\n", facts.YearsInUS)
	fmt.Fprintf(&b, "- Prior removal order: %t\n", facts.PriorRemovalOrder)
	if len(facts.CriminalHistory) > 0 {
		fmt.Fprintf(&b, "- Criminal history: %s\n", strings.Join(facts.CriminalHistory, "; "))
	}
	if len(facts.FamilyTies) > 0 {
		fmt.Fprintf(&b, "- Family ties: %s\n", strings.Join(facts.FamilyTies, "; "))
	}
	b.WriteString("\nRespond in plain text with these labeled sections:\n")
	b.WriteString("Urgency: critical, high, or standard\n")
	b.WriteString("Defenses: bulleted list of candidate defenses\n")
	b.WriteString("Immediate Actions: bulleted list\n")
	b.WriteString("Evidence: bulleted checklist\n")
	b.WriteString("Timeline: one line estimate\n")
	b.WriteString("Strategy: short summary\n")
	return b.String()
}

func bondMotionPrompt(facts BondFacts) string {
	var b strings.Builder
	b.WriteString("You are an immigration attorney assessing a bond motion. Case facts:\n")
	fmt.Fprintf(&b, "- Detention facility: %s\n", facts.DetentionFacility)
	fmt.Fprintf(&b, "- Months detained: %d\n", facts.MonthsDetained)
	if facts.CourtDate != "" {
		fmt.Fprintf(&b, "- Court date: %s\n", facts.CourtDate)
	}
	fmt.Fprintf(&b, "- Years employed: %d\n", facts.EmploymentYears)
	if len(facts.CommunityTies) > 0 {
		fmt.Fprintf(&b, "- Community ties: %s\n", strings.Join(facts.CommunityTies, "; "))
	}
	if len(facts.CriminalHistory) > 0 {
		fmt.Fprintf(&b, "- Criminal history: %s\n", strings.Join(facts.CriminalHistory, "; "))
	}
	b.WriteString("\nRespond in plain text with these labeled sections:\n")
	b.WriteString("Urgency: critical, high, or standard\n")
	b.WriteString("Supporting Factors: bulleted list\n")
	b.WriteString("Immediate Actions: bulleted list\n")
	b.WriteString("Evidence: bulleted checklist\n")
	b.WriteString("Timeline: one line estimate\n")
	b.WriteString("Strategy: short summary\n")
	return b.String()
}
