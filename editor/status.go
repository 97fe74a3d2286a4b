package editor

import (
	"time"

	"github.com/google/uuid"
)

type FlushState string

const (
	FlushSaved  FlushState = "saved"
	FlushFailed FlushState = "failed"
)

// FlushStatus is the signal emitted after every flush attempt.
type FlushStatus struct {
	NoteID  uuid.UUID  `json:"note_id"`
	State   FlushState `json:"state"`
	Saved   int        `json:"saved"`
	Deleted int        `json:"deleted"`
	Error   string     `json:"error,omitempty"`
	At      time.Time  `json:"at"`
}

// Reporter receives flush status signals. Implementations must not block.
type Reporter interface {
	ReportFlush(status FlushStatus)
}

type ReporterFunc func(status FlushStatus)

func (f ReporterFunc) ReportFlush(status FlushStatus) { f(status) }

// MultiReporter fans a status out to every non-nil reporter.
type MultiReporter []Reporter

func (m MultiReporter) ReportFlush(status FlushStatus) {
	for _, r := range m {
		if r != nil {
			r.ReportFlush(status)
		}
	}
}

type nopReporter struct{}

func (nopReporter) ReportFlush(FlushStatus) {}
