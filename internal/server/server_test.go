package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reinacht/medtrack/internal/record"
	"github.com/reinacht/medtrack/internal/registry"
	"github.com/reinacht/medtrack/internal/scheduler"
	"github.com/reinacht/medtrack/internal/sound"
	"github.com/reinacht/medtrack/internal/store"
)

func testServer(t *testing.T) (*Server, *registry.Registry, *Feed) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	reg := registry.Load(db)
	feed := NewFeed(10)
	sched := scheduler.New(reg, feed.Record, sound.Null{}, 30*time.Second, true)
	srv := New(db, reg, sched, sound.Null{}, feed, time.Minute, "test-version")
	return srv, reg, feed
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)

	w := do(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestPersonLifecycle(t *testing.T) {
	srv, _, _ := testServer(t)

	w := do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72,"condition":"hypertension"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/api/people/Siti", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var p record.Person
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode person: %v", err)
	}
	if p.Name != "Siti" || p.Age != 72 {
		t.Errorf("person = %+v", p)
	}

	// Same name again updates in place, no second record.
	w = do(t, srv, "POST", "/api/people", `{"name":"Siti","age":73,"condition":"diabetes"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d", w.Code)
	}
	w = do(t, srv, "GET", "/api/people", "")
	var list struct {
		People []string `json:"people"`
		Active string   `json:"active"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.People) != 1 || list.People[0] != "Siti" {
		t.Errorf("people = %v, want just Siti", list.People)
	}
	if list.Active != "Siti" {
		t.Errorf("active = %q", list.Active)
	}

	w = do(t, srv, "DELETE", "/api/people/Siti", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w = do(t, srv, "GET", "/api/people/Siti", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestSetPersonRequiresName(t *testing.T) {
	srv, _, _ := testServer(t)
	w := do(t, srv, "POST", "/api/people", `{"age":72}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMedicationLifecycle(t *testing.T) {
	srv, _, _ := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72}`)

	w := do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["08:00","20:00"],"with_food":true,"sound_enabled":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/api/people/Siti/medications", "")
	var meds []record.Medication
	if err := json.Unmarshal(w.Body.Bytes(), &meds); err != nil {
		t.Fatalf("decode medications: %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Aspirin" {
		t.Fatalf("medications = %+v", meds)
	}

	w = do(t, srv, "DELETE", "/api/people/Siti/medications/Aspirin", "")
	if w.Code != http.StatusOK {
		t.Fatalf("remove: status = %d", w.Code)
	}
	w = do(t, srv, "GET", "/api/people/Siti/medications", "")
	if err := json.Unmarshal(w.Body.Bytes(), &meds); err != nil {
		t.Fatalf("decode medications: %v", err)
	}
	if len(meds) != 0 {
		t.Errorf("medications after remove = %+v", meds)
	}
}

func TestAddMedicationRejectsMalformedSchedule(t *testing.T) {
	srv, _, _ := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72}`)

	w := do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["8am"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTakenRecordsHistory(t *testing.T) {
	srv, reg, _ := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72}`)
	do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["08:00"]}`)

	w := do(t, srv, "POST", "/api/people/Siti/medications/Aspirin/taken", `{"time":"08:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("taken: status = %d, body = %s", w.Code, w.Body.String())
	}

	today := time.Now().Format(record.DateLayout)
	if !reg.TakenOn("Siti", "Aspirin", "08:00", today) {
		t.Error("dose not recorded")
	}

	w = do(t, srv, "GET", "/api/people/Siti/medications/Aspirin/history", "")
	var history []record.DoseEvent
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Time != "08:00" {
		t.Errorf("history = %+v", history)
	}
}

func TestTakenRejectsMalformedTime(t *testing.T) {
	srv, _, _ := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72}`)
	do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["08:00"]}`)

	w := do(t, srv, "POST", "/api/people/Siti/medications/Aspirin/taken", `{"time":"8am"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSuggestionsEndpoints(t *testing.T) {
	srv, _, _ := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72,"condition":"hypertension"}`)
	do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["08:00"],"description":"morning"}`)
	do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["08:00"],"description":"morning"}`)

	w := do(t, srv, "GET", "/api/people/Siti/medications/Aspirin/suggestions", "")
	var meds []record.MedicationSuggestion
	if err := json.Unmarshal(w.Body.Bytes(), &meds); err != nil {
		t.Fatalf("decode suggestions: %v", err)
	}
	if len(meds) != 1 || meds[0].Count != 2 {
		t.Errorf("suggestions = %+v", meds)
	}

	w = do(t, srv, "GET", "/api/people/Siti/suggestions", "")
	var people []record.PersonSuggestion
	if err := json.Unmarshal(w.Body.Bytes(), &people); err != nil {
		t.Fatalf("decode person suggestions: %v", err)
	}
	if len(people) != 1 || people[0].Age != 72 {
		t.Errorf("person suggestions = %+v", people)
	}
}

func TestRemindersFeed(t *testing.T) {
	srv, _, feed := testServer(t)

	m, err := record.NewMedication("Aspirin", "100mg", []string{"08:00"}, "", false, true, "")
	if err != nil {
		t.Fatalf("NewMedication: %v", err)
	}
	feed.Record(*m, "08:00")

	w := do(t, srv, "GET", "/api/reminders", "")
	var events []ReminderEvent
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].Medication != "Aspirin" || events[0].Time != "08:00" {
		t.Errorf("events = %+v", events)
	}
	if events[0].ID == "" {
		t.Error("event missing id")
	}
}

func TestSoundToggle(t *testing.T) {
	srv, _, _ := testServer(t)

	w := do(t, srv, "PUT", "/api/sound", `{"enabled":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if srv.sched.SoundEnabled() {
		t.Error("sound still enabled")
	}
}

func TestSnoozeUnknownMedication(t *testing.T) {
	srv, _, _ := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72}`)

	w := do(t, srv, "POST", "/api/people/Siti/medications/Aspirin/snooze", `{"time":"08:00"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSnoozeRedeliversUntakenDose(t *testing.T) {
	srv, _, feed := testServer(t)
	do(t, srv, "POST", "/api/people", `{"name":"Siti","age":72}`)
	do(t, srv, "POST", "/api/people/Siti/medications",
		`{"name":"Aspirin","dosage":"100mg","schedule":["08:00"]}`)

	today := time.Now().Format(record.DateLayout)
	srv.redeliver("Siti", "Aspirin", "08:00", today)
	if got := len(feed.Recent(0)); got != 1 {
		t.Fatalf("feed events = %d, want 1", got)
	}

	// Acknowledged doses are not redelivered.
	do(t, srv, "POST", "/api/people/Siti/medications/Aspirin/taken", `{"time":"08:00"}`)
	srv.redeliver("Siti", "Aspirin", "08:00", today)
	if got := len(feed.Recent(0)); got != 1 {
		t.Errorf("feed events = %d, want still 1", got)
	}
}
