package editor

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a scheduled flush runs.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer is a cancelable trailing-edge deferred task. Every Schedule
// call replaces the pending run, so fn only ever runs once per quiet period.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(ctx context.Context) error
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(delay time.Duration, fn func(ctx context.Context) error) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule cancels any pending run and arms a new one.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that fired while being stopped or replaced is stale.
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	_ = d.fn(context.Background())
}

// Cancel drops the pending run and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// FlushNow cancels the pending run and executes fn synchronously.
func (d *Debouncer) FlushNow(ctx context.Context) error {
	d.Cancel()
	return d.fn(ctx)
}
