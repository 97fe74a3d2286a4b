package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"owlistic-notes/blocknotes/broker"
	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/models"
)

// BlockStore persists block records for the editor engine.
type BlockStore struct {
	db *database.Database
}

func NewBlockStore(db *database.Database) *BlockStore {
	return &BlockStore{db: db}
}

func (s *BlockStore) GetBlocksByNote(ctx context.Context, noteID uuid.UUID) ([]models.BlockRecord, error) {
	var records []models.BlockRecord
	err := s.db.DB.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks of note %s: %w", noteID, err)
	}
	return records, nil
}

// SaveBlock inserts the record or overwrites every column of an existing one.
func (s *BlockStore) SaveBlock(ctx context.Context, record models.BlockRecord) error {
	err := s.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save block %s: %w", record.ID, err)
	}
	return nil
}

func (s *BlockStore) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	if err := s.db.DB.WithContext(ctx).Delete(&models.BlockRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete block %s: %w", id, err)
	}
	return nil
}

// RenameNote stores a new note name and records a note.updated event.
func (s *BlockStore) RenameNote(ctx context.Context, noteID uuid.UUID, name string) error {
	tx := s.db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	now := time.Now().UTC()
	result := tx.Model(&models.Note{}).Where("id = ?", noteID).
		Updates(map[string]interface{}{"name": name, "updated_at": now})
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrNoteNotFound
	}

	event, err := models.NewEvent(string(broker.NoteUpdated), "note", noteID, map[string]interface{}{
		"note_id":    noteID.String(),
		"name":       name,
		"updated_at": now,
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
