package testutils

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"owlistic-notes/blocknotes/broker"
	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/models"
)

// MockNoteService mocks the NoteServiceInterface for testing
type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) CreateNote(db *database.Database, name string) (models.Note, error) {
	args := m.Called(db, name)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) GetNoteById(db *database.Database, id string) (models.Note, error) {
	args := m.Called(db, id)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) ListNotes(db *database.Database) ([]models.Note, error) {
	args := m.Called(db)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteService) RenameNote(db *database.Database, id string, name string) (models.Note, error) {
	args := m.Called(db, id, name)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) DeleteNote(db *database.Database, id string) error {
	args := m.Called(db, id)
	return args.Error(0)
}

// MockProducer records published messages.
type MockProducer struct {
	mu       sync.Mutex
	messages []broker.Message
	Err      error
	closed   bool
}

func (p *MockProducer) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.messages = append(p.messages, broker.Message{Subject: subject, Data: data})
	return nil
}

func (p *MockProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *MockProducer) Messages() []broker.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broker.Message(nil), p.messages...)
}

func (p *MockProducer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// MockConsumer hands out a channel tests can push broker messages into.
type MockConsumer struct {
	messages chan broker.Message
	once     sync.Once
}

func NewMockConsumer() *MockConsumer {
	return &MockConsumer{messages: make(chan broker.Message, 16)}
}

func (c *MockConsumer) Messages() <-chan broker.Message {
	return c.messages
}

func (c *MockConsumer) Send(msg broker.Message) {
	c.messages <- msg
}

func (c *MockConsumer) Close() {
	c.once.Do(func() { close(c.messages) })
}
