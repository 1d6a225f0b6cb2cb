package record

import "time"

// RecordTaken appends a dose event for the given schedule slot. No
// deduplication happens on the append side: confirming the same dose twice
// leaves two history entries, and TakenOn absorbs the duplicates.
func (m *Medication) RecordTaken(timeOfDay string, now time.Time) {
	m.History = append(m.History, DoseEvent{Time: timeOfDay, TakenAt: now})
}

// TakenOn reports whether some dose event answers the given schedule slot on
// the given calendar date. The taken-at date, not the scheduled time, decides
// which day a dose counts against.
func (m *Medication) TakenOn(timeOfDay, date string) bool {
	for _, ev := range m.History {
		if ev.Time == timeOfDay && ev.TakenAt.Format(DateLayout) == date {
			return true
		}
	}
	return false
}

// TakenToday is TakenOn for now's date.
func (m *Medication) TakenToday(timeOfDay string, now time.Time) bool {
	return m.TakenOn(timeOfDay, now.Format(DateLayout))
}
