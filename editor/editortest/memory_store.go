// Package editortest provides an in-memory block storage for engine tests.
package editortest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
)

// ErrInjected is returned by MemoryStore writes while failures are enabled.
var ErrInjected = errors.New("injected storage failure")

// MemoryStore is an in-memory block storage that records every call.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]models.BlockRecord

	FailSaves   bool
	FailDeletes bool
	FailLoads   bool

	Saves   []models.BlockRecord
	Deletes []uuid.UUID
	Renames map[uuid.UUID]string
	// Calls counts write attempts, failed ones included.
	Calls int

	beforeSave func(models.BlockRecord)
}

func NewMemoryStore(records ...models.BlockRecord) *MemoryStore {
	s := &MemoryStore{
		records: make(map[uuid.UUID]models.BlockRecord),
		Renames: make(map[uuid.UUID]string),
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *MemoryStore) GetBlocksByNote(_ context.Context, noteID uuid.UUID) ([]models.BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoads {
		return nil, ErrInjected
	}
	var out []models.BlockRecord
	for _, r := range s.records {
		if r.NoteID == noteID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *MemoryStore) SaveBlock(_ context.Context, record models.BlockRecord) error {
	s.mu.Lock()
	hook := s.beforeSave
	s.mu.Unlock()
	if hook != nil {
		hook(record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.FailSaves {
		return ErrInjected
	}
	s.records[record.ID] = record
	s.Saves = append(s.Saves, record)
	return nil
}

func (s *MemoryStore) DeleteBlock(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.FailDeletes {
		return ErrInjected
	}
	delete(s.records, id)
	s.Deletes = append(s.Deletes, id)
	return nil
}

func (s *MemoryStore) RenameNote(_ context.Context, noteID uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.FailSaves {
		return ErrInjected
	}
	s.Renames[noteID] = name
	return nil
}

// SetSaveHook installs fn to run before every save, outside the store lock.
// Tests use it to hold a flush in flight.
func (s *MemoryStore) SetSaveHook(fn func(models.BlockRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeSave = fn
}

// SetFailures toggles write failures.
func (s *MemoryStore) SetFailures(saves, deletes bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailSaves = saves
	s.FailDeletes = deletes
}

// Records returns the stored records of a note ordered by order.
func (s *MemoryStore) Records(noteID uuid.UUID) []models.BlockRecord {
	out, _ := s.GetBlocksByNote(context.Background(), noteID)
	return out
}

// SaveCount is the number of successful saves so far.
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Saves)
}

// SavedNotes lists the note ids of every successful save in call order.
func (s *MemoryStore) SavedNotes() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.Saves))
	for i, r := range s.Saves {
		out[i] = r.NoteID
	}
	return out
}

func (s *MemoryStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves = nil
	s.Deletes = nil
	s.Calls = 0
}
