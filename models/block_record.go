package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockRecord is the flat persisted form of a block. Payload columns are nil
// unless the block's type uses them.
type BlockRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;index" json:"note_id"`
	Type      BlockType `gorm:"type:varchar(20);not null" json:"type"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Order     int       `gorm:"not null" json:"order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`

	Checked     *bool     `json:"checked,omitempty"`
	Collapsed   *bool     `json:"collapsed,omitempty"`
	Children    *string   `gorm:"type:text" json:"children,omitempty"`
	Rows        *int      `json:"rows,omitempty"`
	Cols        *int      `json:"cols,omitempty"`
	TableData   TableGrid `gorm:"type:text" json:"table_data,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Favicon     *string   `json:"favicon,omitempty"`
	VideoURL    *string   `json:"video_url,omitempty"`
	FileName    *string   `json:"file_name,omitempty"`
	FileSize    *int64    `json:"file_size,omitempty"`
	FileData    *string   `json:"file_data,omitempty"`
	Equation    *string   `gorm:"type:text" json:"equation,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
}

func (BlockRecord) TableName() string {
	return "blocks"
}
