package editor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingDebouncer(delay time.Duration) (*Debouncer, *atomic.Int32) {
	var runs atomic.Int32
	d := NewDebouncer(delay, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	return d, &runs
}

func TestDebouncerDefaultDelay(t *testing.T) {
	d, _ := countingDebouncer(0)
	assert.Equal(t, DefaultDebounce, d.Delay())
}

func TestDebouncerCoalesces(t *testing.T) {
	d, runs := countingDebouncer(50 * time.Millisecond)

	for i := 0; i < 10; i++ {
		d.Schedule()
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, d.Pending())
	assert.Equal(t, int32(0), runs.Load())

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 2*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d, runs := countingDebouncer(10 * time.Millisecond)

	assert.False(t, d.Cancel())
	d.Schedule()
	assert.True(t, d.Cancel())
	assert.False(t, d.Pending())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestDebouncerFlushNow(t *testing.T) {
	boom := errors.New("boom")
	var runs atomic.Int32
	d := NewDebouncer(time.Hour, func(context.Context) error {
		runs.Add(1)
		return boom
	})

	d.Schedule()
	err := d.FlushNow(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Pending())
}
