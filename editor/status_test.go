package editor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMultiReporterFansOut(t *testing.T) {
	first, second := &recordingReporter{}, &recordingReporter{}
	var viaFunc []FlushState
	multi := MultiReporter{first, nil, second, ReporterFunc(func(s FlushStatus) {
		viaFunc = append(viaFunc, s.State)
	})}

	status := FlushStatus{NoteID: uuid.New(), State: FlushFailed, Error: "disk full"}
	multi.ReportFlush(status)

	assert.Equal(t, []FlushStatus{status}, first.Statuses())
	assert.Equal(t, []FlushStatus{status}, second.Statuses())
	assert.Equal(t, []FlushState{FlushFailed}, viaFunc)
}
