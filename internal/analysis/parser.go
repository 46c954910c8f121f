package analysis

import (
	"strings"
	"unicode"

	"github.com/vozlegal/intake/internal/errors"
)

// Section headings the model is instructed to emit. Parsing is lenient:
// headings match case-insensitively and a missing section degrades to
// an empty list rather than an error.
const (
	sectionUrgency  = "urgency"
	sectionDefenses = "defenses"
	sectionFactors  = "supporting factors"
	sectionActions  = "immediate actions"
	sectionEvidence = "evidence"
	sectionTimeline = "timeline"
	sectionStrategy = "strategy"
)

var knownSections = []string{
	sectionUrgency,
	sectionDefenses,
	sectionFactors,
	sectionActions,
	sectionEvidence,
	sectionTimeline,
	sectionStrategy,
}

// splitSections carves a free-text model response into labeled blocks.
// A block starts at a line whose prefix matches a known heading followed
// by a colon; text before the first heading is discarded.
func splitSections(raw string) map[string][]string {
	sections := make(map[string][]string)
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if name, rest, ok := matchHeading(trimmed); ok {
			current = name
			if rest != "" {
				sections[current] = append(sections[current], rest)
			}
			continue
		}

		if current != "" {
			sections[current] = append(sections[current], trimmed)
		}
	}

	return sections
}

func matchHeading(line string) (name, rest string, ok bool) {
	lower := strings.ToLower(line)
	for _, section := range knownSections {
		if !strings.HasPrefix(lower, section) {
			continue
		}
		tail := strings.TrimSpace(line[len(section):])
		if !strings.HasPrefix(tail, ":") {
			continue
		}
		return section, strings.TrimSpace(tail[1:]), true
	}
	return "", "", false
}

// missingSections reports expected headings the model left out as a soft
// parse error. Callers log it and degrade; it never propagates.
func missingSections(sections map[string][]string, expected ...string) error {
	var missing []string
	for _, name := range expected {
		if len(sections[name]) == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Parse("response missing sections: " + strings.Join(missing, ", "))
}

// bulletItems strips list markers and numbering from section lines.
func bulletItems(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		clean := normalizeBullet(line)
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func normalizeBullet(line string) string {
	clean := strings.TrimSpace(line)
	for {
		updated := false
		for _, prefix := range []string{"- ", "* ", "• ", "> "} {
			if strings.HasPrefix(clean, prefix) {
				clean = strings.TrimSpace(clean[len(prefix):])
				updated = true
			}
		}
		if !updated {
			break
		}
	}
	return strings.TrimSpace(trimNumericPrefix(clean))
}

func trimNumericPrefix(line string) string {
	if line == "" || !unicode.IsDigit(rune(line[0])) {
		return line
	}

	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	if i >= len(line) {
		return line
	}

	switch line[i] {
	case '.', ')', '-', ':':
		i++
	default:
		return line
	}

	for i < len(line) && unicode.IsSpace(rune(line[i])) {
		i++
	}
	if i >= len(line) {
		return ""
	}
	return line[i:]
}

// joinProse flattens a section back into a single line of text.
func joinProse(lines []string) string {
	return strings.TrimSpace(strings.Join(bulletItems(lines), " "))
}

// parseUrgency reads an urgency keyword out of a section; ok is false
// when nothing recognizable was found.
func parseUrgency(lines []string) (Urgency, bool) {
	text := strings.ToLower(strings.Join(lines, " "))
	switch {
	case strings.Contains(text, string(UrgencyCritical)):
		return UrgencyCritical, true
	case strings.Contains(text, string(UrgencyHigh)):
		return UrgencyHigh, true
	case strings.Contains(text, string(UrgencyStandard)):
		return UrgencyStandard, true
	default:
		return "", false
	}
}
