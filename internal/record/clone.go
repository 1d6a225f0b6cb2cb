package record

// Clone returns a deep copy of the medication. Callers outside the registry
// lock only ever see clones, so an in-flight mutation can never surface a
// half-updated history or schedule.
func (m *Medication) Clone() *Medication {
	out := *m
	out.Schedule = append([]string(nil), m.Schedule...)
	out.History = append([]DoseEvent(nil), m.History...)
	return &out
}

// Clone returns a deep copy of the person, medications and suggestion sets
// included.
func (p *Person) Clone() *Person {
	out := *p
	out.Medications = make([]*Medication, len(p.Medications))
	for i, m := range p.Medications {
		out.Medications[i] = m.Clone()
	}
	out.Suggestions = make(map[string][]MedicationSuggestion, len(p.Suggestions))
	for k, v := range p.Suggestions {
		out.Suggestions[k] = append([]MedicationSuggestion(nil), v...)
	}
	return &out
}
