package broker

import (
	"encoding/json"

	"go.uber.org/zap"

	"owlistic-notes/blocknotes/editor"
	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/models"
)

// StatusPublisher forwards editor flush outcomes to the broker.
type StatusPublisher struct {
	producer Producer
	logger   *zap.Logger
}

func NewStatusPublisher(producer Producer) *StatusPublisher {
	return &StatusPublisher{producer: producer, logger: logging.Get()}
}

// FlushMessage wraps a flush status in the standard envelope.
func FlushMessage(status editor.FlushStatus) *models.StandardMessage {
	event := NoteFlushed
	if status.State == editor.FlushFailed {
		event = NoteFlushFailed
	}
	payload := map[string]interface{}{
		"note_id": status.NoteID.String(),
		"state":   string(status.State),
		"saved":   status.Saved,
		"deleted": status.Deleted,
		"at":      status.At,
	}
	if status.Error != "" {
		payload["error"] = status.Error
	}
	return models.NewStandardMessage(models.EventMessage, string(event), payload).
		WithResource("note", status.NoteID.String())
}

func (p *StatusPublisher) ReportFlush(status editor.FlushStatus) {
	msg := FlushMessage(status)
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to encode flush status", zap.Error(err))
		return
	}
	if err := p.producer.Publish(msg.Event, data); err != nil {
		p.logger.Warn("failed to publish flush status",
			zap.String("note_id", status.NoteID.String()),
			zap.Error(err))
	}
}
