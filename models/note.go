package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is the document owning an ordered set of blocks. Blocks reference the
// note through BlockRecord.NoteID and are loaded separately.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
