// Package scheduler runs the background reminder loop: once per tick it
// matches the wall clock against the active person's schedules and emits at
// most one reminder per (medication, slot, day).
package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/reinacht/medtrack/internal/record"
	"github.com/reinacht/medtrack/internal/registry"
	"github.com/reinacht/medtrack/internal/sound"
)

// NotifyFunc receives each emitted reminder. The consumer decides all
// presentation; the scheduler makes no assumption about acknowledgment.
type NotifyFunc func(med record.Medication, timeOfDay string)

// key identifies one reminder occurrence: this medication, this schedule
// slot, this calendar day.
type key struct {
	Medication string
	Time       string
	Date       string
}

// Scheduler polls the registry on a fixed delay and deduplicates emissions
// within the day. The guard is deliberately two-part: the dose ledger is the
// durable check that survives restarts, and the pending set is the transient
// check that stops a 30-second poll from re-emitting between ticks before
// the dose is acknowledged. Either alone is not enough.
type Scheduler struct {
	reg      *registry.Registry
	notify   NotifyFunc
	player   sound.Player
	interval time.Duration

	mu      sync.Mutex
	pending map[key]time.Time
	sound   bool

	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Scheduler. notify must be non-nil; player may be nil when no
// audio backend is available.
func New(reg *registry.Registry, notify NotifyFunc, player sound.Player, interval time.Duration, soundEnabled bool) *Scheduler {
	return &Scheduler{
		reg:      reg,
		notify:   notify,
		player:   player,
		interval: interval,
		pending:  make(map[key]time.Time),
		sound:    soundEnabled,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine. The loop is fixed-delay: the sleep
// starts after a tick finishes, and a slow tick is never "caught up" with
// extra ticks.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.doneCh)
		for {
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.safeTick()
			select {
			case <-s.stopCh:
				return
			case <-time.After(s.interval):
			}
		}
	}()
}

// Stop signals the polling goroutine and waits for the current tick to
// finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// safeTick runs one tick and converts any panic into a logged error. The
// loop runs unattended indefinitely; a malformed record or a failing
// consumer must never take it down.
func (s *Scheduler) safeTick() {
	defer func() {
		if v := recover(); v != nil {
			log.Printf("scheduler: tick panic: %v", v)
		}
	}()
	s.Tick()
}

// Tick evaluates one polling cycle at the current clock. Exported so tests
// can drive the state machine without real sleeps.
func (s *Scheduler) Tick() {
	now := s.now()
	hhmm := now.Format(record.ClockLayout)
	date := now.Format(record.DateLayout)

	// Due = scheduled at this minute with no dose recorded today. The
	// ledger check runs under the registry lock, so an acknowledgment
	// racing this tick is never lost.
	due := s.reg.DueMedications(hhmm, date)

	s.mu.Lock()
	var emit []record.Medication
	for _, m := range due {
		k := key{Medication: m.Name, Time: hhmm, Date: date}
		if _, seen := s.pending[k]; seen {
			continue
		}
		s.pending[k] = now
		emit = append(emit, m)
	}

	// Expire keys more than a day old so tomorrow's occurrence of the
	// same slot can re-arm. was-taken-today stays the durable guard for
	// the rest of today.
	for k, inserted := range s.pending {
		if now.Sub(inserted) > 24*time.Hour {
			delete(s.pending, k)
		}
	}
	s.mu.Unlock()

	for _, m := range emit {
		if m.SoundEnabled && s.soundOn() && s.player != nil {
			// Best effort; a failed cue never blocks the reminder.
			s.player.Play(m.CustomSound)
		}
		s.notify(m, hhmm)
	}
}

// SetSoundEnabled flips the global audio cue switch; per-medication flags
// still apply.
func (s *Scheduler) SetSoundEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sound = on
}

// SoundEnabled reports the global audio cue switch.
func (s *Scheduler) SoundEnabled() bool {
	return s.soundOn()
}

func (s *Scheduler) soundOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sound
}

// PendingCount reports how many reminder keys are currently live.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
