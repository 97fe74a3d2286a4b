package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>. The event
	// type doubles as the NATS subject.
	NoteCreated     EventType = "note.created"
	NoteUpdated     EventType = "note.updated"
	NoteDeleted     EventType = "note.deleted"
	NoteFlushed     EventType = "note.flushed"
	NoteFlushFailed EventType = "note.flush_failed"
)

// NoteSubjects are the lifecycle subjects forwarded to status stream clients.
// Flush outcomes reach local clients directly and are not listed.
var NoteSubjects = []string{
	string(NoteCreated),
	string(NoteUpdated),
	string(NoteDeleted),
}

// Message is a broker message as seen by consumers.
type Message struct {
	Subject string
	Data    []byte
}
