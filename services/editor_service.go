package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/editor"
	"owlistic-notes/blocknotes/logging"
)

// openNote tracks one note in the registry. mu is held while the note loads,
// closes or is deleted, so those steps never overlap for the same note.
// The other fields are written under both mu and the service lock.
type openNote struct {
	mu      sync.Mutex
	engine  *editor.Engine
	closing bool
	removed bool
}

func (n *openNote) ready() bool {
	return n.engine != nil && !n.closing
}

// EditorService keeps one editing engine per open note.
type EditorService struct {
	db      *database.Database
	notes   NoteServiceInterface
	store   editor.Storage
	options []editor.Option
	logger  *zap.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]*openNote
}

func NewEditorService(db *database.Database, notes NoteServiceInterface, store editor.Storage, options ...editor.Option) *EditorService {
	return &EditorService{
		db:      db,
		notes:   notes,
		store:   store,
		options: options,
		logger:  logging.Get(),
		entries: make(map[uuid.UUID]*openNote),
	}
}

// claim returns the registry entry of a note with its lock held, creating
// the entry when the note is not tracked yet.
func (s *EditorService) claim(noteID uuid.UUID) *openNote {
	for {
		s.mu.Lock()
		entry, ok := s.entries[noteID]
		if !ok {
			entry = &openNote{}
			s.entries[noteID] = entry
		}
		s.mu.Unlock()

		entry.mu.Lock()
		if !entry.removed {
			return entry
		}
		entry.mu.Unlock()
	}
}

func (s *EditorService) setEngine(entry *openNote, engine *editor.Engine) {
	s.mu.Lock()
	entry.engine = engine
	s.mu.Unlock()
}

func (s *EditorService) setClosing(entry *openNote, closing bool) {
	s.mu.Lock()
	entry.closing = closing
	s.mu.Unlock()
}

// forget drops an entry from the registry. The caller holds entry.mu.
func (s *EditorService) forget(noteID uuid.UUID, entry *openNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.engine = nil
	entry.removed = true
	if s.entries[noteID] == entry {
		delete(s.entries, noteID)
	}
}

// Open returns the engine of a note, loading it on first use. Loading one
// note does not hold up opening others. An Open racing a Close of the same
// note waits for the final flush and then loads what it wrote.
func (s *EditorService) Open(ctx context.Context, id string) (*editor.Engine, error) {
	noteID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if entry, ok := s.entries[noteID]; ok && entry.ready() {
		engine := entry.engine
		s.mu.Unlock()
		return engine, nil
	}
	s.mu.Unlock()

	entry := s.claim(noteID)
	defer entry.mu.Unlock()
	if entry.engine != nil {
		return entry.engine, nil
	}

	note, err := s.notes.GetNoteById(s.db, id)
	if err != nil {
		s.forget(noteID, entry)
		return nil, err
	}
	engine := editor.New(s.store, s.options...)
	if err := engine.Load(ctx, note); err != nil {
		s.forget(noteID, entry)
		return nil, err
	}
	s.setEngine(entry, engine)
	s.logger.Info("note opened", zap.String("note_id", noteID.String()))
	return engine, nil
}

// Engine returns the engine of an already open note.
func (s *EditorService) Engine(id string) (*editor.Engine, error) {
	noteID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[noteID]
	if !ok || !entry.ready() {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, noteID)
	}
	return entry.engine, nil
}

// Close flushes and releases a note's engine. Closing a note that is not
// open is a no-op. When the final flush fails the note stays open with its
// changes pending.
func (s *EditorService) Close(ctx context.Context, id string) error {
	noteID, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	entry, ok := s.entries[noteID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.closeEntry(ctx, noteID, entry)
}

func (s *EditorService) closeEntry(ctx context.Context, noteID uuid.UUID, entry *openNote) error {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.removed || entry.engine == nil {
		return nil
	}
	s.setClosing(entry, true)
	if err := entry.engine.Close(ctx); err != nil {
		s.setClosing(entry, false)
		return err
	}
	s.forget(noteID, entry)
	s.logger.Info("note closed", zap.String("note_id", noteID.String()))
	return nil
}

// Delete runs del, which removes the note from storage, and releases the
// open engine without flushing only when del succeeds. A failed delete
// keeps the open note and its pending changes.
func (s *EditorService) Delete(id string, del func() error) error {
	noteID, err := parseID(id)
	if err != nil {
		return err
	}

	entry := s.claim(noteID)
	defer entry.mu.Unlock()
	if entry.engine == nil {
		err := del()
		s.forget(noteID, entry)
		return err
	}
	if err := entry.engine.DiscardAfter(del); err != nil {
		return err
	}
	s.forget(noteID, entry)
	return nil
}

// CloseAll flushes every open note. Every engine is closed even when some
// flushes fail; the notes that failed stay open.
func (s *EditorService) CloseAll(ctx context.Context) error {
	s.mu.Lock()
	entries := make(map[uuid.UUID]*openNote, len(s.entries))
	for id, entry := range s.entries {
		entries[id] = entry
	}
	s.mu.Unlock()

	var errs error
	for noteID, entry := range entries {
		if err := s.closeEntry(ctx, noteID, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close note %s: %w", noteID, err))
		}
	}
	return errs
}

func (s *EditorService) OpenNotes() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(s.entries))
	for id, entry := range s.entries {
		if entry.ready() {
			out = append(out, id)
		}
	}
	return out
}
