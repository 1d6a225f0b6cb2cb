package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakenOnMatchesSlotAndDate(t *testing.T) {
	m, err := NewMedication("Aspirin", "100mg", []string{"08:00"}, "", false, true, "")
	require.NoError(t, err)

	taken := time.Date(2024, 1, 1, 8, 2, 11, 0, time.UTC)
	m.RecordTaken("08:00", taken)

	assert.True(t, m.TakenOn("08:00", "2024-01-01"))
	assert.False(t, m.TakenOn("08:00", "2024-01-02"), "history from a prior day must not count")
	assert.False(t, m.TakenOn("20:00", "2024-01-01"), "other slots must not count")
}

func TestTakenOnUsesTakenAtDateNotScheduledTime(t *testing.T) {
	m, err := NewMedication("Melatonin", "3mg", []string{"23:55"}, "", false, true, "")
	require.NoError(t, err)

	// Dose confirmed a few minutes after midnight counts for the day it
	// was actually taken.
	m.RecordTaken("23:55", time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC))

	assert.False(t, m.TakenOn("23:55", "2024-01-01"))
	assert.True(t, m.TakenOn("23:55", "2024-01-02"))
}

func TestDuplicateAppendsAreAbsorbedByTakenOn(t *testing.T) {
	m, err := NewMedication("Aspirin", "100mg", []string{"08:00"}, "", false, true, "")
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 8, 0, 30, 0, time.UTC)
	m.RecordTaken("08:00", now)
	m.RecordTaken("08:00", now.Add(time.Minute))

	// Append side never dedupes; the query side does.
	assert.Len(t, m.History, 2)
	assert.True(t, m.TakenOn("08:00", "2024-01-01"))
}

func TestHistorySurvivesScheduleEdits(t *testing.T) {
	m, err := NewMedication("Aspirin", "100mg", []string{"08:00", "20:00"}, "", false, true, "")
	require.NoError(t, err)

	m.RecordTaken("20:00", time.Date(2024, 1, 1, 20, 1, 0, 0, time.UTC))
	m.Schedule = []string{"08:00"}

	// Removing a slot keeps its historical entries; the record is
	// immutable even when the schedule moves on.
	assert.Len(t, m.History, 1)
	assert.True(t, m.TakenOn("20:00", "2024-01-01"))
}
