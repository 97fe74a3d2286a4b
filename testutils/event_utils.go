package testutils

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
)

// MockEventRows creates mock SQL rows for events testing
func MockEventRows(events []models.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event", "version", "entity", "entity_id",
		"timestamp", "data", "status",
		"dispatched", "dispatched_at",
	})

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.Version == 0 {
			event.Version = 1
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if event.Data == nil {
			event.Data = json.RawMessage(`{}`)
		}
		if event.Status == "" {
			event.Status = models.EventPending
		}

		var dispatchedAt driver.Value
		if event.DispatchedAt != nil {
			dispatchedAt = *event.DispatchedAt
		}

		rows.AddRow(
			event.ID.String(),
			event.Event,
			event.Version,
			event.Entity,
			event.EntityID.String(),
			event.Timestamp,
			[]byte(event.Data),
			string(event.Status),
			event.Dispatched,
			dispatchedAt,
		)
	}

	return rows
}

func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
