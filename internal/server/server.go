package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/reinacht/medtrack/internal/registry"
	"github.com/reinacht/medtrack/internal/scheduler"
	"github.com/reinacht/medtrack/internal/sound"
	"github.com/reinacht/medtrack/internal/store"
)

// Server is the medtrack HTTP API: the foreground surface that edits records
// and acknowledges the reminders the scheduler emits.
type Server struct {
	db      *store.DB
	reg     *registry.Registry
	sched   *scheduler.Scheduler
	player  sound.Player
	feed    *Feed
	snooze  time.Duration
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server. sched and player may be nil; the affected routes
// then degrade (no sound toggle, silent confirmations).
func New(db *store.DB, reg *registry.Registry, sched *scheduler.Scheduler, player sound.Player, feed *Feed, snooze time.Duration, version string) *Server {
	s := &Server{
		db:      db,
		reg:     reg,
		sched:   sched,
		player:  player,
		feed:    feed,
		snooze:  snooze,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/people", s.handleListPeople)
		r.Post("/people", s.handleSetPerson)
		r.Get("/people/{name}", s.handleGetPerson)
		r.Delete("/people/{name}", s.handleDeletePerson)
		r.Post("/people/{name}/activate", s.handleActivate)
		r.Get("/active", s.handleActive)

		r.Get("/people/{name}/suggestions", s.handlePersonSuggestions)
		r.Get("/people/{name}/medications", s.handleListMedications)
		r.Post("/people/{name}/medications", s.handleAddMedication)
		r.Delete("/people/{name}/medications/{medication}", s.handleRemoveMedication)
		r.Get("/people/{name}/medications/{medication}/history", s.handleHistory)
		r.Get("/people/{name}/medications/{medication}/suggestions", s.handleMedicationSuggestions)
		r.Post("/people/{name}/medications/{medication}/taken", s.handleTaken)
		r.Post("/people/{name}/medications/{medication}/snooze", s.handleSnooze)

		r.Get("/reminders", s.handleReminders)
		r.Get("/sounds", s.handleSounds)
		r.Put("/sound", s.handleSetSound)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
		"active":  s.reg.ActiveName(),
	})
}
