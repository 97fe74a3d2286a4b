package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventCompleted EventStatus = "completed"
)

// Event is an outbox row: services write it in the same transaction as the
// change it describes and the dispatcher publishes it later.
type Event struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Event        string          `gorm:"not null;index" json:"event"`
	Version      int             `gorm:"not null" json:"version"`
	Entity       string          `gorm:"not null" json:"entity"`
	EntityID     uuid.UUID       `gorm:"type:uuid;index" json:"entity_id"`
	Timestamp    time.Time       `gorm:"not null" json:"timestamp"`
	Data         json.RawMessage `gorm:"type:jsonb;not null" json:"data"`
	Status       EventStatus     `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Dispatched   bool            `gorm:"not null;default:false;index" json:"dispatched"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
}

// NewEvent builds a pending event about entity. data is stored as JSON.
func NewEvent(event, entity string, entityID uuid.UUID, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New(),
		Event:     event,
		Version:   1,
		Entity:    entity,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Data:      raw,
		Status:    EventPending,
	}, nil
}

// Payload decodes Data. Undecodable or empty data yields an empty map.
func (e *Event) Payload() (map[string]interface{}, error) {
	payload := make(map[string]interface{})
	if len(e.Data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return make(map[string]interface{}), err
	}
	return payload, nil
}

// DispatchUpdate is the column set that marks the event published at at.
func DispatchUpdate(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": at,
		"status":        EventCompleted,
	}
}
