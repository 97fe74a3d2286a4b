package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/testutils"
)

func TestEventHandlerService_ProcessPendingEvents(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	producer := &testutils.MockProducer{}
	note, err := NoteServiceInstance.CreateNote(db, "Outbox")
	require.NoError(t, err)
	_, err = NoteServiceInstance.RenameNote(db, note.ID.String(), "Outbox renamed")
	require.NoError(t, err)

	service := NewEventHandlerService(db, producer, time.Hour)
	assert.Equal(t, 2, service.ProcessPendingEvents())
	assert.Zero(t, service.ProcessPendingEvents(), "dispatched events are not sent twice")

	messages := producer.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "note.created", messages[0].Subject)
	assert.Equal(t, "note.updated", messages[1].Subject)

	var msg models.StandardMessage
	require.NoError(t, json.Unmarshal(messages[1].Data, &msg))
	assert.Equal(t, models.EventMessage, msg.Type)
	assert.Equal(t, "note.updated", msg.Event)
	assert.Equal(t, "note", msg.ResourceType)
	assert.Equal(t, note.ID.String(), msg.ResourceID)
	assert.Equal(t, "Outbox renamed", msg.Payload["name"])

	var events []models.Event
	require.NoError(t, db.DB.Find(&events).Error)
	for _, e := range events {
		assert.True(t, e.Dispatched)
		assert.Equal(t, models.EventCompleted, e.Status)
		assert.NotNil(t, e.DispatchedAt)
	}
}

func TestEventHandlerService_PublishFailureKeepsEventPending(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	producer := &testutils.MockProducer{Err: errors.New("broker down")}
	_, err := NoteServiceInstance.CreateNote(db, "Pending")
	require.NoError(t, err)

	service := NewEventHandlerService(db, producer, time.Hour)
	assert.Zero(t, service.ProcessPendingEvents())

	var pending int64
	require.NoError(t, db.DB.Model(&models.Event{}).Where("dispatched = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(1), pending)

	producer.Err = nil
	assert.Equal(t, 1, service.ProcessPendingEvents())
}

func TestEventHandlerService_MockedRows(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()
	producer := &testutils.MockProducer{}
	entityID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE dispatched = \$1`).
		WithArgs(false).
		WillReturnRows(testutils.MockEventRows([]models.Event{
			{
				Event:    "note.deleted",
				Entity:   "note",
				EntityID: entityID,
				Data:     json.RawMessage(`{"note_id":"` + entityID.String() + `"}`),
			},
		}))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "events" SET`).
		WillReturnResult(testutils.NewResult(1, 1))
	mock.ExpectCommit()

	service := NewEventHandlerService(db, producer, time.Hour)
	assert.Equal(t, 1, service.ProcessPendingEvents())
	assert.NoError(t, mock.ExpectationsWereMet())

	messages := producer.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "note.deleted", messages[0].Subject)
}

func TestEventHandlerService_Lifecycle(t *testing.T) {
	db := &database.Database{}
	service := NewEventHandlerService(db, &testutils.MockProducer{}, time.Hour)

	service.Start()
	assert.True(t, service.isRunning)

	service.Start()
	assert.True(t, service.isRunning)

	service.Stop()
	assert.False(t, service.isRunning)

	service.Stop()
	assert.False(t, service.isRunning)
}

func TestEventHandlerService_DefaultInterval(t *testing.T) {
	service := NewEventHandlerService(&database.Database{}, &testutils.MockProducer{}, 0)
	assert.Equal(t, time.Second, service.interval)
}
