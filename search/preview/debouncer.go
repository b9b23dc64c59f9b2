// Package preview runs debounced, cancellable count-only searches while a
// tree is being edited. At most one preview is pending per Debouncer; a new
// Schedule cancels the previous one before arming its own timer.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
)

// DefaultDelay is the quiet period before a preview runs
const DefaultDelay = 400 * time.Millisecond

// Counter is the count-only search port
type Counter interface {
	Count(ctx context.Context, req models.SearchRequest) (int64, error)
}

// CounterFunc adapts a function to Counter
type CounterFunc func(ctx context.Context, req models.SearchRequest) (int64, error)

// Count calls f
func (f CounterFunc) Count(ctx context.Context, req models.SearchRequest) (int64, error) {
	return f(ctx, req)
}

// Result is the outcome of the latest preview. Superseded previews produce none.
type Result struct {
	Seq   uint64
	Total int64
	Err   error
}

// Option configures a Debouncer
type Option func(*Debouncer)

// WithClock replaces the wall clock, e.g. with clockwork.NewFakeClock() in tests
func WithClock(clock clockwork.Clock) Option {
	return func(d *Debouncer) { d.clock = clock }
}

// WithDelay sets the quiet period
func WithDelay(delay time.Duration) Option {
	return func(d *Debouncer) { d.delay = delay }
}

// WithResultHandler receives every delivered Result, on the preview goroutine
func WithResultHandler(fn func(Result)) Option {
	return func(d *Debouncer) { d.onResult = fn }
}

// Debouncer schedules previews against a Counter
type Debouncer struct {
	counter  Counter
	clock    clockwork.Clock
	delay    time.Duration
	onResult func(Result)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New creates a Debouncer
func New(counter Counter, opts ...Option) *Debouncer {
	d := &Debouncer{
		counter: counter,
		clock:   clockwork.NewRealClock(),
		delay:   DefaultDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule cancels any pending preview and arms a new one for req.
// It returns the sequence number the eventual Result will carry.
func (d *Debouncer) Schedule(req models.SearchRequest) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.seq
	}
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.seq++
	seq := d.seq
	// Arm the timer before returning so a fake clock sees it immediately.
	fire := d.clock.After(d.delay)

	d.wg.Add(1)
	go d.run(ctx, seq, fire, req)
	return seq
}

func (d *Debouncer) run(ctx context.Context, seq uint64, fire <-chan time.Time, req models.SearchRequest) {
	defer d.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-fire:
	}
	if ctx.Err() != nil {
		return
	}

	total, err := d.counter.Count(ctx, req)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Warn("preview %d failed: %v", seq, err)
	}

	d.mu.Lock()
	latest := seq == d.seq
	d.mu.Unlock()
	if latest && d.onResult != nil {
		d.onResult(Result{Seq: seq, Total: total, Err: err})
	}
}

// Cancel drops the pending preview, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Wait blocks until no preview goroutine is running
func (d *Debouncer) Wait() {
	d.wg.Wait()
}

// Close cancels the pending preview and refuses new ones
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()
	d.wg.Wait()
}
