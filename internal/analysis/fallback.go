package analysis

// ruleUrgency applies the deterministic urgency ladder: detained clients
// are critical, a scheduled hearing is high, everything else standard.
func ruleUrgency(isDetained bool, courtDate string) Urgency {
	switch {
	case isDetained:
		return UrgencyCritical
	case courtDate != "":
		return UrgencyHigh
	default:
		return UrgencyStandard
	}
}

// fallbackRemovalDefense derives a recommendation purely from the input
// facts. Same shape as the LLM path so callers never special-case it.
func fallbackRemovalDefense(facts CaseFacts) RemovalDefenseAnalysis {
	out := RemovalDefenseAnalysis{
		Urgency:           ruleUrgency(facts.IsDetained, facts.CourtDate),
		CandidateDefenses: []string{},
		ImmediateActions:  []string{},
		EvidenceChecklist: []string{},
	}

	if facts.IsDetained {
		out.CandidateDefenses = append(out.CandidateDefenses, "bond motion for release from detention")
		out.ImmediateActions = append(out.ImmediateActions, "locate the client with the ICE detainee locator", "request a bond hearing")
		out.TimelineEstimate = "bond hearing typically within 2-4 weeks of request"
	} else if facts.CourtDate != "" {
		out.ImmediateActions = append(out.ImmediateActions, "calendar the master hearing on "+facts.CourtDate, "file an appearance with the immigration court")
		out.TimelineEstimate = "prepare filings before the scheduled hearing"
	} else {
		out.ImmediateActions = append(out.ImmediateActions, "schedule a full consultation to review relief options")
		out.TimelineEstimate = "consultation within 1-2 weeks"
	}

	if facts.YearsInUS >= 10 && !facts.PriorRemovalOrder {
		out.CandidateDefenses = append(out.CandidateDefenses, "cancellation of removal (ten-year presence)")
		out.EvidenceChecklist = append(out.EvidenceChecklist, "proof of continuous presence (leases, tax returns, school records)")
	}
	if len(facts.FamilyTies) > 0 {
		out.EvidenceChecklist = append(out.EvidenceChecklist, "family relationship documents (birth and marriage certificates)")
	}
	if facts.PriorRemovalOrder {
		out.CandidateDefenses = append(out.CandidateDefenses, "motion to reopen prior removal order")
	}
	if len(facts.CriminalHistory) > 0 {
		out.EvidenceChecklist = append(out.EvidenceChecklist, "certified dispositions for every criminal case")
	}

	out.StrategySummary = "Rule-based preliminary assessment; attorney review required before filing."
	return out
}

// fallbackBondMotion mirrors fallbackRemovalDefense for bond motions.
// A bond client is detained by definition, so urgency is always critical.
func fallbackBondMotion(facts BondFacts) BondMotionAnalysis {
	out := BondMotionAnalysis{
		Urgency:           UrgencyCritical,
		SupportingFactors: []string{},
		ImmediateActions:  []string{"request a bond hearing before the immigration judge"},
		EvidenceChecklist: []string{"letters of support from family and community"},
		TimelineEstimate:  "bond hearing typically within 2-4 weeks of request",
	}

	if len(facts.CommunityTies) > 0 {
		out.SupportingFactors = append(out.SupportingFactors, "established community ties")
	}
	if facts.EmploymentYears > 0 {
		out.SupportingFactors = append(out.SupportingFactors, "stable employment history")
		out.EvidenceChecklist = append(out.EvidenceChecklist, "employment verification letter and pay stubs")
	}
	if len(facts.CriminalHistory) == 0 {
		out.SupportingFactors = append(out.SupportingFactors, "no criminal history")
	} else {
		out.EvidenceChecklist = append(out.EvidenceChecklist, "certified dispositions and proof of rehabilitation")
	}

	out.StrategySummary = "Rule-based preliminary assessment; attorney review required before filing."
	return out
}
