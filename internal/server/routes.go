package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reinacht/medtrack/internal/record"
)

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"people": s.reg.PersonNames(),
		"active": s.reg.ActiveName(),
	})
}

func (s *Server) handleSetPerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Age       int    `json:"age"`
		Condition string `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}

	p, err := s.reg.SetPerson(req.Name, req.Age, req.Condition)
	if err != nil {
		// The record is updated in memory even when the save failed;
		// report the failure without dropping the result.
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.reg.Person(name)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.reg.DeletePerson(name); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.reg.Activate(name); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "active": name})
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	name := s.reg.ActiveName()
	p, ok := s.reg.Person(name)
	if !ok {
		http.Error(w, `{"error":"no active person"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.reg.Person(name)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p.Medications)
}

func (s *Server) handleAddMedication(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		Name         string   `json:"name"`
		Dosage       string   `json:"dosage"`
		Schedule     []string `json:"schedule"`
		Description  string   `json:"description"`
		WithFood     bool     `json:"with_food"`
		SoundEnabled bool     `json:"sound_enabled"`
		CustomSound  string   `json:"custom_sound"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	m, err := s.reg.AddMedication(name, req.Name, req.Dosage, req.Schedule, req.Description, req.WithFood, req.SoundEnabled, req.CustomSound)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, record.ErrInvalidClock) {
			status = http.StatusBadRequest
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(m)
}

func (s *Server) handleRemoveMedication(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	med := chi.URLParam(r, "medication")
	if err := s.reg.RemoveMedication(name, med); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "removed"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	med := chi.URLParam(r, "medication")

	p, ok := s.reg.Person(name)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	m, ok := p.Medication(med)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.History)
}

func (s *Server) handleMedicationSuggestions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	med := chi.URLParam(r, "medication")
	list := s.reg.MedicationSuggestions(name, med)
	if list == nil {
		list = []record.MedicationSuggestion{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (s *Server) handlePersonSuggestions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	list := s.reg.PersonSuggestions(name)
	if list == nil {
		list = []record.PersonSuggestion{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// handleTaken is the acknowledgment entrypoint: it appends a dose event so
// the scheduler's was-taken-today check suppresses the rest of the day.
func (s *Server) handleTaken(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	med := chi.URLParam(r, "medication")

	var req struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := record.ValidateClock(req.Time); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	if err := s.reg.RecordTaken(name, med, req.Time, time.Now()); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
		return
	}

	if s.player != nil {
		// Confirmation cue, best effort.
		s.player.Play("success")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "recorded"})
}

// handleSnooze is sink-side: the scheduler's own dedup state is untouched,
// the server just re-delivers into the feed after the snooze duration if the
// dose is still unacknowledged for the day it was snoozed on.
func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	med := chi.URLParam(r, "medication")

	var req struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := record.ValidateClock(req.Time); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	p, ok := s.reg.Person(name)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if _, ok := p.Medication(med); !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	date := time.Now().Format(record.DateLayout)
	time.AfterFunc(s.snooze, func() {
		s.redeliver(name, med, req.Time, date)
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "snoozed",
		"until":  time.Now().Add(s.snooze).Format(time.RFC3339),
	})
}

// redeliver puts a snoozed reminder back on the feed unless the dose was
// acknowledged in the meantime.
func (s *Server) redeliver(name, medName, timeOfDay, date string) {
	if s.reg.TakenOn(name, medName, timeOfDay, date) {
		return
	}
	p, ok := s.reg.Person(name)
	if !ok {
		return
	}
	m, ok := p.Medication(medName)
	if !ok {
		return
	}
	if s.player != nil && m.SoundEnabled {
		s.player.Play(m.CustomSound)
	}
	if s.feed != nil {
		s.feed.Record(*m, timeOfDay)
	}
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	n := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, _ = strconv.Atoi(q)
	}

	events := []ReminderEvent{}
	if s.feed != nil {
		events = s.feed.Recent(n)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// handleSetSound flips the scheduler's global audio cue switch.
func (s *Server) handleSetSound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if s.sched == nil {
		http.Error(w, `{"error":"scheduler not running"}`, http.StatusServiceUnavailable)
		return
	}
	s.sched.SetSoundEnabled(req.Enabled)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": req.Enabled})
}

func (s *Server) handleSounds(w http.ResponseWriter, r *http.Request) {
	sounds := []string{}
	if s.player != nil {
		sounds = s.player.Available()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"sounds": sounds})
}
