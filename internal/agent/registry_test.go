package agent

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	intakeErrors "github.com/vozlegal/intake/internal/errors"
)

func TestNewRegistry_Builtin(t *testing.T) {
	r, err := NewRegistry(Builtin())
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	if r.Len() != len(Builtin()) {
		t.Errorf("Len() = %d, want %d", r.Len(), len(Builtin()))
	}
}

func TestRegistry_Get_RoundTrip(t *testing.T) {
	r, err := NewRegistry(Builtin())
	if err != nil {
		t.Fatal(err)
	}

	for _, typ := range r.Types() {
		def, err := r.Get(typ)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", typ, err)
		}
		if def.Type != typ {
			t.Errorf("Get(%s).Type = %s, want %s", typ, def.Type, typ)
		}
	}
}

func TestRegistry_Get_Unknown(t *testing.T) {
	r, _ := NewRegistry(Builtin())

	_, err := r.Get(Type("tax-law"))
	if !errors.Is(err, intakeErrors.ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_All_InsertionOrderAndRestartable(t *testing.T) {
	defs := []Definition{
		{Type: TypeClassification, Name: "B"},
		{Type: TypeGeneralIntake, Name: "A"},
		{Type: TypeEmergencyAfterHours, Name: "C"},
	}
	r, err := NewRegistry(defs)
	if err != nil {
		t.Fatal(err)
	}

	want := []Type{TypeClassification, TypeGeneralIntake, TypeEmergencyAfterHours}
	for round := 0; round < 2; round++ {
		var got []Type
		for def := range r.All() {
			got = append(got, def.Type)
		}
		if len(got) != len(want) {
			t.Fatalf("round %d: got %d defs, want %d", round, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("round %d: got[%d] = %s, want %s", round, i, got[i], want[i])
			}
		}
	}

	// Early break must not affect a later full pass.
	for range r.All() {
		break
	}
	count := 0
	for range r.All() {
		count++
	}
	if count != len(want) {
		t.Errorf("restarted sequence yielded %d defs, want %d", count, len(want))
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	defs := []Definition{
		{Type: TypeClassification},
		{Type: TypeClassification},
	}
	if _, err := NewRegistry(defs); !errors.Is(err, intakeErrors.ErrInvalidInput) {
		t.Errorf("duplicate registration error = %v, want ErrInvalidInput", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "agents.yaml")

	content := `agents:
  personal-injury:
    name: Accidentes
    language: es
    availability:
      days: [monday, wednesday, friday]
      hours:
        start: "09:00"
        end: "17:00"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	defs, err := ApplyOverrides(path, Builtin())
	if err != nil {
		t.Fatalf("ApplyOverrides() failed: %v", err)
	}

	r, _ := NewRegistry(defs)
	def, err := r.Get(TypePersonalInjury)
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "Accidentes" {
		t.Errorf("Name = %q, want Accidentes", def.Name)
	}
	if def.Language != LanguageSpanish {
		t.Errorf("Language = %q, want es", def.Language)
	}
	if !def.Availability.Contains(time.Wednesday) || def.Availability.Contains(time.Tuesday) {
		t.Errorf("days override not applied: %v", def.Availability.Days)
	}
	if def.Availability.Hours.Start != "09:00" {
		t.Errorf("Hours.Start = %q, want 09:00", def.Availability.Hours.Start)
	}
}

func TestApplyOverrides_UnknownAgent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "agents.yaml")

	content := "agents:\n  maritime-law:\n    name: Nope\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ApplyOverrides(path, Builtin()); !errors.Is(err, intakeErrors.ErrInvalidInput) {
		t.Errorf("unknown agent override error = %v, want ErrInvalidInput", err)
	}
}

func TestApplyOverrides_MalformedHours(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"unpadded hour", "8:00", "18:00"},
		{"hour out of range", "25:00", "26:00"},
		{"not a clock", "morning", "evening"},
		{"inverted window", "18:00", "08:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, "agents.yaml")

			content := "agents:\n  personal-injury:\n    availability:\n      days: [monday]\n      hours:\n        start: \"" + tc.start + "\"\n        end: \"" + tc.end + "\"\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			if _, err := ApplyOverrides(path, Builtin()); !errors.Is(err, intakeErrors.ErrInvalidInput) {
				t.Errorf("hours %q-%q error = %v, want ErrInvalidInput", tc.start, tc.end, err)
			}
		})
	}
}
