// Package registry is the single owner of the durable record graph. Every
// read and mutation goes through one coarse lock, and every mutation is
// persisted write-through before the lock is released, so the background
// scheduler and the foreground API never see a half-applied change.
package registry

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/reinacht/medtrack/internal/record"
	"github.com/reinacht/medtrack/internal/store"
)

// Registry holds the in-memory record graph backed by a snapshot store.
type Registry struct {
	mu     sync.Mutex
	db     *store.DB
	people []*record.Person

	// personSuggestions is keyed by person name; reseeded from the loaded
	// people on startup and grown as names are re-entered.
	personSuggestions map[string][]record.PersonSuggestion

	active string
}

// Load builds a Registry from the snapshot in db. A missing or unreadable
// snapshot falls back to a single blank person rather than failing startup.
func Load(db *store.DB) *Registry {
	r := &Registry{
		db:                db,
		personSuggestions: map[string][]record.PersonSuggestion{},
	}

	people, err := db.LoadSnapshot()
	if err != nil {
		if err != store.ErrNoSnapshot {
			log.Printf("registry: load snapshot: %v (starting blank)", err)
		}
		people = []*record.Person{record.NewPerson("", 0, "")}
	}
	if len(people) == 0 {
		people = []*record.Person{record.NewPerson("", 0, "")}
	}
	r.people = people
	r.active = people[0].Name

	for _, p := range people {
		if p.Name != "" {
			r.personSuggestions[p.Name] = record.ObservePerson(r.personSuggestions[p.Name], p.Age, p.Condition)
		}
	}
	return r
}

// save persists the whole snapshot. Callers hold r.mu. Failures are logged
// and returned; they never take the process down.
func (r *Registry) save() error {
	if err := r.db.SaveSnapshot(r.people); err != nil {
		log.Printf("registry: save snapshot: %v", err)
		return err
	}
	return nil
}

// People returns a deep copy of the person list.
func (r *Registry) People() []*record.Person {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*record.Person, len(r.people))
	for i, p := range r.people {
		out[i] = p.Clone()
	}
	return out
}

// PersonNames returns all non-blank person names, sorted.
func (r *Registry) PersonNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var names []string
	for _, p := range r.people {
		if p.Name != "" && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Person returns a deep copy of the person with the given name.
func (r *Registry) Person(name string) (*record.Person, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.findLocked(name)
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (r *Registry) findLocked(name string) (*record.Person, bool) {
	for _, p := range r.people {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// SetPerson creates the person on first reference by name, or updates the
// existing record in place when the name recurs. The observation feeds the
// person-level suggestion set, and the person becomes the active one.
func (r *Registry) SetPerson(name string, age int, condition string) (*record.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if age < 0 {
		age = 0
	}

	p, ok := r.findLocked(name)
	if ok {
		p.Age = age
		p.Condition = condition
	} else {
		p = record.NewPerson(name, age, condition)
		r.people = append(r.people, p)
	}
	r.active = name

	if name != "" {
		r.personSuggestions[name] = record.ObservePerson(r.personSuggestions[name], age, condition)
	}
	return p.Clone(), r.save()
}

// DeletePerson removes the person with the given name. Deletion is always
// explicit; nothing removes a person automatically.
func (r *Registry) DeletePerson(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.people[:0]
	for _, p := range r.people {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	r.people = kept
	if len(r.people) == 0 {
		r.people = []*record.Person{record.NewPerson("", 0, "")}
	}
	if r.active == name {
		r.active = r.people[0].Name
	}
	return r.save()
}

// Activate makes the named person the one the scheduler watches.
func (r *Registry) Activate(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.findLocked(name); !ok {
		return fmt.Errorf("no such person: %q", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the currently selected person's name.
func (r *Registry) ActiveName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// DueMedications returns, for the active person, every (medication, slot)
// pair scheduled at hhmm that has no dose recorded for date. This is the
// scheduler's read path: the schedule match and the durable ledger check
// happen under the same lock as foreground mutations, so a "mark taken"
// racing the tick can never be lost.
func (r *Registry) DueMedications(hhmm, date string) []record.Medication {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.findLocked(r.active)
	if !ok {
		return nil
	}

	var due []record.Medication
	for _, m := range p.Medications {
		for _, t := range m.Schedule {
			if t == hhmm && !m.TakenOn(t, date) {
				due = append(due, *m.Clone())
			}
		}
	}
	return due
}

// TakenOn reports whether any of the person's medications with the given
// name has a dose recorded for the slot on the date.
func (r *Registry) TakenOn(personName, medName, timeOfDay, date string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.findLocked(personName)
	if !ok {
		return false
	}
	for _, m := range p.Medications {
		if m.Name == medName && m.TakenOn(timeOfDay, date) {
			return true
		}
	}
	return false
}

// AddMedication validates and appends a medication for the named person,
// feeding the per-name suggestion set.
func (r *Registry) AddMedication(personName, medName, dosage string, schedule []string, description string, withFood, soundEnabled bool, customSound string) (*record.Medication, error) {
	m, err := record.NewMedication(medName, dosage, schedule, description, withFood, soundEnabled, customSound)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.findLocked(personName)
	if !ok {
		return nil, fmt.Errorf("no such person: %q", personName)
	}
	p.AddMedication(m)
	return m.Clone(), r.save()
}

// RemoveMedication drops every medication with the given name from the named
// person.
func (r *Registry) RemoveMedication(personName, medName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.findLocked(personName)
	if !ok {
		return fmt.Errorf("no such person: %q", personName)
	}
	p.RemoveMedication(medName)
	return r.save()
}

// RecordTaken appends a dose event for the given schedule slot to every
// medication the person has with that name, stamped with now. The append
// itself is never deduplicated; TakenOn absorbs double confirmations.
func (r *Registry) RecordTaken(personName, medName, timeOfDay string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.findLocked(personName)
	if !ok {
		return fmt.Errorf("no such person: %q", personName)
	}

	matched := false
	for _, m := range p.Medications {
		if m.Name == medName {
			m.RecordTaken(timeOfDay, now)
			matched = true
		}
	}
	if !matched {
		return fmt.Errorf("no such medication: %q", medName)
	}
	return r.save()
}

// MedicationSuggestions returns the ranked suggestion set for a medication
// name within the named person's scope.
func (r *Registry) MedicationSuggestions(personName, medName string) []record.MedicationSuggestion {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.findLocked(personName)
	if !ok {
		return nil
	}
	return p.MedicationSuggestions(medName)
}

// PersonSuggestions returns the ranked (age, condition) suggestions observed
// for a person name.
func (r *Registry) PersonSuggestions(name string) []record.PersonSuggestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return record.SortPersonSuggestions(r.personSuggestions[name])
}

// Replace swaps the whole record set, used by snapshot import. The active
// selection resets to the first person.
func (r *Registry) Replace(people []*record.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(people) == 0 {
		people = []*record.Person{record.NewPerson("", 0, "")}
	}
	r.people = people
	r.active = people[0].Name

	r.personSuggestions = map[string][]record.PersonSuggestion{}
	for _, p := range people {
		if p.Name != "" {
			r.personSuggestions[p.Name] = record.ObservePerson(r.personSuggestions[p.Name], p.Age, p.Condition)
		}
	}
	return r.save()
}
