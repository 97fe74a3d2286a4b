package editor

import (
	"context"

	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
)

// Storage is the persistence collaborator. The engine only hands it records
// produced by the serializer.
type Storage interface {
	GetBlocksByNote(ctx context.Context, noteID uuid.UUID) ([]models.BlockRecord, error)
	SaveBlock(ctx context.Context, record models.BlockRecord) error
	DeleteBlock(ctx context.Context, id uuid.UUID) error
}

// TitleStorage is implemented by stores that also persist note names.
type TitleStorage interface {
	RenameNote(ctx context.Context, noteID uuid.UUID, name string) error
}
