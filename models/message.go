package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType tells status stream clients how to read a message.
type MessageType string

const (
	EventMessage     MessageType = "event"
	SubscribeMessage MessageType = "subscribe"
	ErrorMessage     MessageType = "error"
)

// StandardMessage is the envelope shared by the broker subjects and the
// websocket status stream.
type StandardMessage struct {
	ID           string                 `json:"id"`
	Type         MessageType            `json:"type"`
	Event        string                 `json:"event,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Payload      map[string]interface{} `json:"payload"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	ResourceType string                 `json:"resource_type,omitempty"`
}

func NewStandardMessage(msgType MessageType, event string, payload map[string]interface{}) *StandardMessage {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &StandardMessage{
		ID:        uuid.New().String(),
		Type:      msgType,
		Event:     event,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func NewErrorMessage(text string) *StandardMessage {
	return NewStandardMessage(ErrorMessage, "", map[string]interface{}{"message": text})
}

// WithResource tags the message with the resource it concerns.
func (m *StandardMessage) WithResource(resourceType string, resourceID string) *StandardMessage {
	m.ResourceType = resourceType
	m.ResourceID = resourceID
	return m
}

// DecodeMessage parses an envelope. A message without resource tags that
// carries a note_id in its payload is attributed to that note.
func DecodeMessage(data []byte) (*StandardMessage, error) {
	var m StandardMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.ResourceID == "" {
		if noteID, ok := m.Payload["note_id"].(string); ok && noteID != "" {
			m.ResourceType, m.ResourceID = "note", noteID
		}
	}
	return &m, nil
}
