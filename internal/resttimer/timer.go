// Package resttimer is the countdown between sets:
// idle -> configuring -> running <-> paused -> (expires) -> idle.
package resttimer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid rest timer transition")
	ErrInvalidDuration   = errors.New("rest duration must be positive")
)

type State int

const (
	StateIdle State = iota
	StateConfiguring
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Ticker is the part of time.Ticker the timer uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

type Option func(*Timer)

// WithTicker replaces time.NewTicker.
func WithTicker(newTicker func(d time.Duration) Ticker) Option {
	return func(t *Timer) {
		t.newTicker = newTicker
	}
}

// WithInterval sets the tick interval, one second by default.
func WithInterval(interval time.Duration) Option {
	return func(t *Timer) {
		t.interval = interval
	}
}

// OnTick is called after every tick with the remaining time. It runs on the
// timer goroutine and must not call Pause or Reset.
func OnTick(fn func(remaining time.Duration)) Option {
	return func(t *Timer) {
		t.onTick = fn
	}
}

func OnExpire(fn func()) Option {
	return func(t *Timer) {
		t.onExpire = fn
	}
}

type loop struct {
	stop chan struct{}
	done chan struct{}
}

type Timer struct {
	newTicker func(d time.Duration) Ticker
	interval  time.Duration
	onTick    func(remaining time.Duration)
	onExpire  func()

	mu        sync.Mutex
	state     State
	duration  time.Duration
	remaining time.Duration
	loop      *loop
}

func New(opts ...Option) *Timer {
	t := &Timer{
		newTicker: newTimeTicker,
		interval:  time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Configure sets the rest duration, from idle or configuring.
func (t *Timer) Configure(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, d)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle && t.state != StateConfiguring {
		return t.invalidLocked("configure")
	}
	t.state = StateConfiguring
	t.duration = d
	t.remaining = d
	return nil
}

func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateConfiguring {
		return t.invalidLocked("start")
	}
	t.state = StateRunning
	t.remaining = t.duration
	t.startLoopLocked()
	return nil
}

func (t *Timer) Pause() error {
	t.mu.Lock()
	if t.state != StateRunning {
		err := t.invalidLocked("pause")
		t.mu.Unlock()
		return err
	}
	t.state = StatePaused
	l := t.loop
	t.loop = nil
	t.mu.Unlock()

	l.halt()
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return t.invalidLocked("resume")
	}
	t.state = StateRunning
	t.startLoopLocked()
	return nil
}

// Reset goes back to idle from any state.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.state = StateIdle
	t.duration = 0
	t.remaining = 0
	l := t.loop
	t.loop = nil
	t.mu.Unlock()

	l.halt()
}

func (t *Timer) invalidLocked(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, t.state)
}

func (t *Timer) startLoopLocked() {
	l := &loop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	t.loop = l
	ticker := t.newTicker(t.interval)
	go t.run(l, ticker)
}

func (t *Timer) run(l *loop, ticker Ticker) {
	defer close(l.done)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C():
			if t.tick(l) {
				return
			}
		}
	}
}

// tick counts one interval down and reports whether the loop is over.
func (t *Timer) tick(l *loop) bool {
	t.mu.Lock()
	if t.loop != l || t.state != StateRunning {
		t.mu.Unlock()
		return false
	}
	t.remaining -= t.interval
	expired := t.remaining <= 0
	if expired {
		t.remaining = 0
		t.duration = 0
		t.state = StateIdle
		t.loop = nil
	}
	remaining := t.remaining
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(remaining)
	}
	if expired && t.onExpire != nil {
		t.onExpire()
	}
	return expired
}

// halt stops the loop goroutine and waits for it to exit.
func (l *loop) halt() {
	if l == nil {
		return
	}
	close(l.stop)
	<-l.done
}
