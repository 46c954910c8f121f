package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationOrDefault parses a config duration, substituting defaultValue
// when the configured value is blank. Timeouts live in config as strings
// so YAML and env vars stay human-readable.
func DurationOrDefault(value, defaultValue string) (time.Duration, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		s = strings.TrimSpace(defaultValue)
	}
	if s == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return d, nil
}
