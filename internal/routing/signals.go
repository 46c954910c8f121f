package routing

import (
	"strings"
)

// Signals is the per-message diagnostic readout. It is ephemeral: computed,
// consumed, never stored.
type Signals struct {
	IsEmergency  bool      `json:"is_emergency"`
	NeedsSpanish bool      `json:"needs_spanish"`
	LegalArea    LegalArea `json:"legal_area,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
}

// AnalyzeSignals computes routing signals for one inbound message. Pure
// function with no hidden state; it also feeds non-routing analytics, so it
// must stay side-effect free.
func AnalyzeSignals(input string) Signals {
	lower := strings.ToLower(input)

	var signals Signals

	for _, phrase := range emergencyPhrases {
		if strings.Contains(lower, phrase) {
			signals.IsEmergency = true
			signals.Keywords = append(signals.Keywords, phrase)
			break
		}
	}

	for _, indicator := range spanishIndicators {
		if strings.Contains(lower, indicator) {
			signals.NeedsSpanish = true
			break
		}
	}

	for _, category := range legalAreaKeywords {
		for _, keyword := range category.Keywords {
			if strings.Contains(lower, keyword) {
				signals.LegalArea = category.Area
				signals.Keywords = append(signals.Keywords, keyword)
				break
			}
		}
		if signals.LegalArea != AreaNone {
			break
		}
	}

	return signals
}
