package services

import (
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/testutils"
)

func TestCreateNote_Success(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	service := &NoteService{}

	note, err := service.CreateNote(db, "  Meeting notes  ")
	require.NoError(t, err)
	assert.Equal(t, "Meeting notes", note.Name)
	assert.NotEqual(t, uuid.Nil, note.ID)

	var records []models.BlockRecord
	require.NoError(t, db.DB.Where("note_id = ?", note.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, models.TextBlock, records[0].Type)
	assert.Equal(t, "", records[0].Content)
	assert.Equal(t, 0, records[0].Order)

	var events []models.Event
	require.NoError(t, db.DB.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "note.created", events[0].Event)
	assert.Equal(t, "note", events[0].Entity)
	assert.Equal(t, note.ID, events[0].EntityID)
	assert.False(t, events[0].Dispatched)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(events[0].Data, &data))
	assert.Equal(t, "Meeting notes", data["name"])
}

func TestCreateNote_DefaultName(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	note, err := NoteServiceInstance.CreateNote(db, "   ")
	require.NoError(t, err)
	assert.Equal(t, DefaultNoteName, note.Name)
}

func TestGetNoteById(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	created, err := NoteServiceInstance.CreateNote(db, "Lookup")
	require.NoError(t, err)

	note, err := NoteServiceInstance.GetNoteById(db, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Lookup", note.Name)

	_, err = NoteServiceInstance.GetNoteById(db, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NoteServiceInstance.GetNoteById(db, uuid.New().String())
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestGetNoteById_NotFoundMock(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	_, err := NoteServiceInstance.GetNoteById(db, uuid.New().String())
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotes_MostRecentFirst(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := models.Note{ID: uuid.New(), Name: "older", CreatedAt: base, UpdatedAt: base}
	newer := models.Note{ID: uuid.New(), Name: "newer", CreatedAt: base, UpdatedAt: base.Add(time.Hour)}
	require.NoError(t, db.DB.Create(&older).Error)
	require.NoError(t, db.DB.Create(&newer).Error)

	notes, err := NoteServiceInstance.ListNotes(db)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "newer", notes[0].Name)
	assert.Equal(t, "older", notes[1].Name)
}

func TestRenameNote(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	created, err := NoteServiceInstance.CreateNote(db, "Before")
	require.NoError(t, err)

	note, err := NoteServiceInstance.RenameNote(db, created.ID.String(), "After")
	require.NoError(t, err)
	assert.Equal(t, "After", note.Name)
	assert.False(t, note.UpdatedAt.Before(created.UpdatedAt))

	_, err = NoteServiceInstance.RenameNote(db, uuid.New().String(), "Ghost")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestDeleteNote(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	note, err := NoteServiceInstance.CreateNote(db, "Doomed")
	require.NoError(t, err)
	keeper, err := NoteServiceInstance.CreateNote(db, "Keeper")
	require.NoError(t, err)

	require.NoError(t, NoteServiceInstance.DeleteNote(db, note.ID.String()))

	_, err = NoteServiceInstance.GetNoteById(db, note.ID.String())
	assert.ErrorIs(t, err, ErrNoteNotFound)

	var remaining int64
	require.NoError(t, db.DB.Model(&models.BlockRecord{}).Where("note_id = ?", note.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, db.DB.Model(&models.BlockRecord{}).Where("note_id = ?", keeper.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	var deleted int64
	require.NoError(t, db.DB.Model(&models.Event{}).Where("event = ? AND entity_id = ?", "note.deleted", note.ID).Count(&deleted).Error)
	assert.Equal(t, int64(1), deleted)
}

func TestDeleteNote_Errors(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	assert.ErrorIs(t, NoteServiceInstance.DeleteNote(db, "bad"), ErrInvalidInput)
	assert.ErrorIs(t, NoteServiceInstance.DeleteNote(db, uuid.New().String()), ErrNoteNotFound)
}
