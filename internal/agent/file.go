package agent

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vozlegal/intake/internal/errors"
)

type definitionOverride struct {
	Name           string   `yaml:"name"`
	Language       string   `yaml:"language"`
	PromptTemplate string   `yaml:"prompt_template"`
	Skills         []string `yaml:"skills"`
	Availability   *struct {
		Days  []string `yaml:"days"`
		Hours Hours    `yaml:"hours"`
	} `yaml:"availability"`
}

type overridesFile struct {
	Agents map[string]definitionOverride `yaml:"agents"`
}

// ApplyOverrides merges a YAML overrides file into the given definitions.
// Unknown agent keys in the file are rejected rather than silently ignored.
func ApplyOverrides(path string, defs []Definition) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent overrides %s: %w", path, err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse agent overrides %s: %w", path, err)
	}

	byType := make(map[Type]int, len(defs))
	for i, def := range defs {
		byType[def.Type] = i
	}

	for key, ov := range file.Agents {
		idx, ok := byType[Type(key)]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("overrides reference unknown agent %q", key))
		}

		def := &defs[idx]
		if ov.Name != "" {
			def.Name = ov.Name
		}
		if ov.Language != "" {
			def.Language = Language(ov.Language)
		}
		if ov.PromptTemplate != "" {
			def.PromptTemplate = ov.PromptTemplate
		}
		if len(ov.Skills) > 0 {
			def.Skills = ov.Skills
		}
		if ov.Availability != nil {
			days, err := parseWeekdays(ov.Availability.Days)
			if err != nil {
				return nil, fmt.Errorf("agent %q: %w", key, err)
			}
			if err := validateHours(ov.Availability.Hours); err != nil {
				return nil, fmt.Errorf("agent %q: %w", key, err)
			}
			def.Availability = Availability{Days: days, Hours: ov.Availability.Hours}
		}
	}

	return defs, nil
}

// validateHours rejects malformed windows up front. Availability compares
// "HH:MM" strings lexically, so an unpadded "8:00" would silently sort
// after "18:00" and disable the agent.
func validateHours(h Hours) error {
	for _, v := range []string{h.Start, h.End} {
		if err := validateClock(v); err != nil {
			return err
		}
	}
	if h.Start > h.End {
		return errors.InvalidInput(fmt.Sprintf("hours start %q after end %q", h.Start, h.End))
	}
	return nil
}

func validateClock(v string) error {
	if len(v) != 5 || v[2] != ':' {
		return errors.InvalidInput(fmt.Sprintf("hours %q must be zero-padded HH:MM", v))
	}
	if _, err := time.Parse("15:04", v); err != nil {
		return errors.InvalidInput(fmt.Sprintf("invalid hours %q", v))
	}
	return nil
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	lookup := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	out := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := lookup[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown weekday %q", name))
		}
		out = append(out, day)
	}
	return out, nil
}
