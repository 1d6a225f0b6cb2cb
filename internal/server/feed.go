package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reinacht/medtrack/internal/record"
)

// ReminderEvent is one emitted reminder as the API exposes it.
type ReminderEvent struct {
	ID          string    `json:"id"`
	Medication  string    `json:"medication"`
	Dosage      string    `json:"dosage"`
	Description string    `json:"description"`
	WithFood    bool      `json:"with_food"`
	Time        string    `json:"time"`
	EmittedAt   time.Time `json:"emitted_at"`
}

// Feed is a bounded, newest-first buffer of emitted reminders. It is the
// notification sink the HTTP surface exposes: the scheduler's callback
// records into it, consumers poll it.
type Feed struct {
	mu     sync.Mutex
	events []ReminderEvent
	max    int
}

// NewFeed creates a Feed holding at most max events.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = 100
	}
	return &Feed{max: max}
}

// Record appends an emitted reminder, evicting the oldest past capacity.
// Its signature matches scheduler.NotifyFunc.
func (f *Feed) Record(med record.Medication, timeOfDay string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, ReminderEvent{
		ID:          uuid.NewString(),
		Medication:  med.Name,
		Dosage:      med.Dosage,
		Description: med.Description,
		WithFood:    med.WithFood,
		Time:        timeOfDay,
		EmittedAt:   time.Now(),
	})
	if len(f.events) > f.max {
		f.events = f.events[len(f.events)-f.max:]
	}
}

// Recent returns up to n events, newest first.
func (f *Feed) Recent(n int) []ReminderEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 || n > len(f.events) {
		n = len(f.events)
	}
	out := make([]ReminderEvent, 0, n)
	for i := len(f.events) - 1; i >= len(f.events)-n; i-- {
		out = append(out, f.events[i])
	}
	return out
}
