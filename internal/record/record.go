// Package record holds the durable medication-tracking model: people, their
// medications, and the append-only dose history each medication carries.
package record

import (
	"fmt"
	"sort"
	"time"
)

// ClockLayout is the wall-clock granularity every schedule entry and dose
// record uses: 24-hour "HH:MM".
const ClockLayout = "15:04"

// DateLayout is the calendar-date form used when bucketing doses by day.
const DateLayout = "2006-01-02"

// ErrInvalidClock is returned when a schedule entry is not a well-formed
// 24-hour HH:MM string.
var ErrInvalidClock = fmt.Errorf("schedule time must be HH:MM on a 24-hour clock")

// ValidateClock rejects anything that is not a canonical HH:MM string.
// Schedules are validated here, at creation time, so the scheduler never
// has to deal with malformed entries.
func ValidateClock(s string) error {
	if len(s) != 5 || s[2] != ':' {
		return fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if _, err := time.Parse(ClockLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return nil
}

// DoseEvent is one taken dose: which schedule slot it answers and when it
// was actually recorded. Events are immutable once appended.
type DoseEvent struct {
	Time    string    `json:"time"`
	TakenAt time.Time `json:"timestamp"`
}

// Medication belongs to exactly one Person. History is append-only and never
// pruned; small personal datasets make unbounded growth acceptable.
type Medication struct {
	Name         string      `json:"name"`
	Dosage       string      `json:"dosage"`
	Schedule     []string    `json:"schedule"`
	Description  string      `json:"description"`
	WithFood     bool        `json:"with_food"`
	SoundEnabled bool        `json:"sound_enabled"`
	CustomSound  string      `json:"custom_sound"`
	History      []DoseEvent `json:"history"`
}

// NewMedication validates the schedule and returns a Medication with an
// empty history. Malformed schedule entries are rejected here, not at
// reminder-match time.
func NewMedication(name, dosage string, schedule []string, description string, withFood, soundEnabled bool, customSound string) (*Medication, error) {
	if name == "" {
		return nil, fmt.Errorf("medication name required")
	}
	for _, t := range schedule {
		if err := ValidateClock(t); err != nil {
			return nil, err
		}
	}
	if customSound == "" {
		customSound = "reminder"
	}
	return &Medication{
		Name:         name,
		Dosage:       dosage,
		Schedule:     append([]string(nil), schedule...),
		Description:  description,
		WithFood:     withFood,
		SoundEnabled: soundEnabled,
		CustomSound:  customSound,
		History:      []DoseEvent{},
	}, nil
}

// Person is a tracked individual. Name is the natural key: the same name
// always refers to the same record.
type Person struct {
	Name        string                            `json:"name"`
	Age         int                               `json:"age"`
	Condition   string                            `json:"condition"`
	Medications []*Medication                     `json:"medicines"`
	Suggestions map[string][]MedicationSuggestion `json:"medicine_suggestions"`
}

// NewPerson returns a Person with no medications.
func NewPerson(name string, age int, condition string) *Person {
	if age < 0 {
		age = 0
	}
	return &Person{
		Name:        name,
		Age:         age,
		Condition:   condition,
		Medications: []*Medication{},
		Suggestions: map[string][]MedicationSuggestion{},
	}
}

// AddMedication appends the medication and records its attribute combination
// in the per-name suggestion set.
func (p *Person) AddMedication(m *Medication) {
	p.Medications = append(p.Medications, m)
	if p.Suggestions == nil {
		p.Suggestions = map[string][]MedicationSuggestion{}
	}
	p.Suggestions[m.Name] = observeMedication(p.Suggestions[m.Name], m)
}

// RemoveMedication drops every medication with the given name. History held
// by removed medications is gone with them; suggestions survive.
func (p *Person) RemoveMedication(name string) {
	kept := p.Medications[:0]
	for _, m := range p.Medications {
		if m.Name != name {
			kept = append(kept, m)
		}
	}
	p.Medications = kept
}

// Medication returns the first medication with the given name.
func (p *Person) Medication(name string) (*Medication, bool) {
	for _, m := range p.Medications {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// MedicationNames returns the distinct medication names, sorted.
func (p *Person) MedicationNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range p.Medications {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names
}
