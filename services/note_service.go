package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"owlistic-notes/blocknotes/broker"
	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/serializer"
)

// DefaultNoteName is used when a note is created without a name.
const DefaultNoteName = "Untitled"

type NoteServiceInterface interface {
	CreateNote(db *database.Database, name string) (models.Note, error)
	GetNoteById(db *database.Database, id string) (models.Note, error)
	ListNotes(db *database.Database) ([]models.Note, error)
	RenameNote(db *database.Database, id string, name string) (models.Note, error)
	DeleteNote(db *database.Database, id string) error
}

type NoteService struct{}

var NoteServiceInstance NoteServiceInterface = &NoteService{}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidInput
	}
	return parsed, nil
}

func noteName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultNoteName
	}
	return name
}

// CreateNote stores a note together with the single empty text block every
// document starts with.
func (s *NoteService) CreateNote(db *database.Database, name string) (models.Note, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	now := time.Now().UTC()
	note := models.Note{
		ID:        uuid.New(),
		Name:      noteName(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	first := models.NewBlock(uuid.New(), note.ID, models.TextBlock, "", now)
	record := serializer.ToRecord(first)
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	event, err := models.NewEvent(string(broker.NoteCreated), "note", note.ID, map[string]interface{}{
		"note_id":    note.ID.String(),
		"name":       note.Name,
		"created_at": note.CreatedAt,
	})
	if err != nil {
		tx.Rollback()
		return models.Note{}, err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteService) GetNoteById(db *database.Database, id string) (models.Note, error) {
	noteID, err := parseID(id)
	if err != nil {
		return models.Note{}, err
	}
	var note models.Note
	if err := db.DB.First(&note, "id = ?", noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

// ListNotes returns every note, most recently edited first.
func (s *NoteService) ListNotes(db *database.Database) ([]models.Note, error) {
	var notes []models.Note
	if err := db.DB.Order("updated_at desc").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *NoteService) RenameNote(db *database.Database, id string, name string) (models.Note, error) {
	note, err := s.GetNoteById(db, id)
	if err != nil {
		return models.Note{}, err
	}
	note.Name = noteName(name)
	if err := NewBlockStore(db).RenameNote(context.Background(), note.ID, note.Name); err != nil {
		return models.Note{}, err
	}
	return s.GetNoteById(db, id)
}

// DeleteNote permanently removes a note and its blocks.
func (s *NoteService) DeleteNote(db *database.Database, id string) error {
	noteID, err := parseID(id)
	if err != nil {
		return err
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("note_id = ?", noteID).Delete(&models.BlockRecord{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	result := tx.Delete(&models.Note{}, "id = ?", noteID)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrNoteNotFound
	}

	event, err := models.NewEvent(string(broker.NoteDeleted), "note", noteID, map[string]interface{}{
		"note_id": noteID.String(),
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
