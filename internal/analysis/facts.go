package analysis

// Urgency ranks how fast the legal team must act on a case.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyStandard Urgency = "standard"
)

// CaseFacts is the structured intake for a removal-defense consult.
// CourtDate is empty when no hearing is scheduled.
type CaseFacts struct {
	IsDetained        bool     `json:"is_detained"`
	DetentionFacility string   `json:"detention_facility,omitempty"`
	CourtDate         string   `json:"court_date,omitempty"`
	YearsInUS         int      `json:"years_in_us"`
	CriminalHistory   []string `json:"criminal_history,omitempty"`
	FamilyTies        []string `json:"family_ties,omitempty"`
	PriorRemovalOrder bool     `json:"prior_removal_order"`
}

// RemovalDefenseAnalysis is the structured recommendation returned to the
// caller. The LLM path and the rule-based fallback produce the same shape.
type RemovalDefenseAnalysis struct {
	Urgency           Urgency  `json:"urgency"`
	CandidateDefenses []string `json:"candidate_defenses"`
	ImmediateActions  []string `json:"immediate_actions"`
	EvidenceChecklist []string `json:"evidence_checklist"`
	TimelineEstimate  string   `json:"timeline_estimate"`
	StrategySummary   string   `json:"strategy_summary"`
}

// BondFacts is the structured intake for a bond-motion consult.
type BondFacts struct {
	DetentionFacility string   `json:"detention_facility"`
	MonthsDetained    int      `json:"months_detained"`
	CourtDate         string   `json:"court_date,omitempty"`
	CommunityTies     []string `json:"community_ties,omitempty"`
	EmploymentYears   int      `json:"employment_years"`
	CriminalHistory   []string `json:"criminal_history,omitempty"`
}

// BondMotionAnalysis mirrors RemovalDefenseAnalysis for bond motions.
type BondMotionAnalysis struct {
	Urgency           Urgency  `json:"urgency"`
	SupportingFactors []string `json:"supporting_factors"`
	ImmediateActions  []string `json:"immediate_actions"`
	EvidenceChecklist []string `json:"evidence_checklist"`
	TimelineEstimate  string   `json:"timeline_estimate"`
	StrategySummary   string   `json:"strategy_summary"`
}
