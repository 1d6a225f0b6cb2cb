package record

import "sort"

// MedicationSuggestion is one observed (dosage, description) combination for
// a medication name, with how often it has been entered. Counts only grow.
type MedicationSuggestion struct {
	Dosage      string `json:"dosage"`
	Description string `json:"description"`
	WithFood    bool   `json:"with_food"`
	Count       int    `json:"count"`
}

// PersonSuggestion is one observed (age, condition) combination for a person
// name.
type PersonSuggestion struct {
	Age       int    `json:"age"`
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

func observeMedication(list []MedicationSuggestion, m *Medication) []MedicationSuggestion {
	for i := range list {
		if list[i].Dosage == m.Dosage && list[i].Description == m.Description {
			list[i].Count++
			return list
		}
	}
	return append(list, MedicationSuggestion{
		Dosage:      m.Dosage,
		Description: m.Description,
		WithFood:    m.WithFood,
		Count:       1,
	})
}

// ObservePerson folds an (age, condition) observation into the list,
// incrementing a matching combination or appending a fresh one.
func ObservePerson(list []PersonSuggestion, age int, condition string) []PersonSuggestion {
	for i := range list {
		if list[i].Age == age && list[i].Condition == condition {
			list[i].Count++
			return list
		}
	}
	return append(list, PersonSuggestion{Age: age, Condition: condition, Count: 1})
}

// MedicationSuggestions returns the suggestion set for a medication name,
// most frequent first. Ties preserve insertion order.
func (p *Person) MedicationSuggestions(name string) []MedicationSuggestion {
	list := append([]MedicationSuggestion(nil), p.Suggestions[name]...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Count > list[j].Count })
	return list
}

// MostLikelyMedication returns the highest-count suggestion for a medication
// name, or false if the name has never been seen.
func (p *Person) MostLikelyMedication(name string) (MedicationSuggestion, bool) {
	list := p.MedicationSuggestions(name)
	if len(list) == 0 {
		return MedicationSuggestion{}, false
	}
	return list[0], true
}

// SortPersonSuggestions orders a person-suggestion list most frequent first,
// with stable ties.
func SortPersonSuggestions(list []PersonSuggestion) []PersonSuggestion {
	out := append([]PersonSuggestion(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
