package services

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"owlistic-notes/blocknotes/broker"
	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/models"
)

// EventHandlerService publishes outbox events to the broker.
type EventHandlerService struct {
	db       *database.Database
	producer broker.Producer
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	stop      chan struct{}
	done      chan struct{}
}

func NewEventHandlerService(db *database.Database, producer broker.Producer, interval time.Duration) *EventHandlerService {
	if interval <= 0 {
		interval = time.Second
	}
	return &EventHandlerService{
		db:       db,
		producer: producer,
		interval: interval,
		logger:   logging.Get(),
	}
}

func (s *EventHandlerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

func (s *EventHandlerService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *EventHandlerService) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.ProcessPendingEvents()
		}
	}
}

// ProcessPendingEvents dispatches every undispatched event in timestamp
// order and returns how many were published.
func (s *EventHandlerService) ProcessPendingEvents() int {
	var events []models.Event
	if err := s.db.DB.Where("dispatched = ?", false).Order("timestamp asc").Find(&events).Error; err != nil {
		s.logger.Error("failed to fetch pending events", zap.Error(err))
		return 0
	}

	dispatched := 0
	for _, event := range events {
		if err := s.dispatchEvent(event); err != nil {
			s.logger.Warn("failed to dispatch event",
				zap.String("event_id", event.ID.String()),
				zap.String("event", event.Event),
				zap.Error(err))
			continue
		}
		dispatched++
	}
	if dispatched > 0 {
		s.logger.Debug("dispatched events", zap.Int("count", dispatched))
	}
	return dispatched
}

func (s *EventHandlerService) dispatchEvent(event models.Event) error {
	data, err := event.Payload()
	if err != nil {
		s.logger.Warn("could not decode event data", zap.String("event_id", event.ID.String()), zap.Error(err))
	}

	msg := models.NewStandardMessage(models.EventMessage, event.Event, data).
		WithResource(event.Entity, event.EntityID.String())
	msg.ID = event.ID.String()
	msg.Timestamp = event.Timestamp

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.producer.Publish(event.Event, payload); err != nil {
		return err
	}

	return s.db.DB.Model(&models.Event{}).Where("id = ?", event.ID).
		Updates(models.DispatchUpdate(time.Now().UTC())).Error
}
