package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reinacht/medtrack/internal/record"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// SaveSnapshot serializes the complete set of people and replaces the stored
// document in one transaction. There are no partial writes: every save is the
// whole snapshot.
func (db *DB) SaveSnapshot(people []*record.Person) error {
	doc, err := EncodeSnapshot(people)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM snapshots"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear snapshot: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO snapshots (id, document, saved_at) VALUES (1, ?, ?)",
		string(doc), time.Now().UnixMilli(),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the decoded people from the stored document.
// Returns ErrNoSnapshot when the table is empty; decode failures come back
// as errors so the caller can fall back to a blank record set.
func (db *DB) LoadSnapshot() ([]*record.Person, error) {
	var doc string
	err := db.QueryRow("SELECT document FROM snapshots WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeSnapshot([]byte(doc))
}

// EncodeSnapshot renders people as the canonical snapshot document: a JSON
// list of person objects.
func EncodeSnapshot(people []*record.Person) ([]byte, error) {
	if people == nil {
		people = []*record.Person{}
	}
	return json.MarshalIndent(people, "", "    ")
}

// DecodeSnapshot parses a snapshot document. The canonical form is a list of
// people; a bare single-person object (the old single-individual format) is
// accepted and upgraded to a one-element list.
func DecodeSnapshot(doc []byte) ([]*record.Person, error) {
	var people []*record.Person
	if err := json.Unmarshal(doc, &people); err == nil {
		normalize(people)
		return people, nil
	}

	var single record.Person
	if err := json.Unmarshal(doc, &single); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	people = []*record.Person{&single}
	normalize(people)
	return people, nil
}

// normalize fills the nil slices and maps JSON decoding leaves behind so the
// rest of the code never has to check.
func normalize(people []*record.Person) {
	for _, p := range people {
		if p.Medications == nil {
			p.Medications = []*record.Medication{}
		}
		if p.Suggestions == nil {
			p.Suggestions = map[string][]record.MedicationSuggestion{}
		}
		for _, m := range p.Medications {
			if m.Schedule == nil {
				m.Schedule = []string{}
			}
			if m.History == nil {
				m.History = []record.DoseEvent{}
			}
			if m.CustomSound == "" {
				m.CustomSound = "reminder"
			}
		}
	}
}
