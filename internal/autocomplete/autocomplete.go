// Package autocomplete suggests exercise names while the user types.
//
// Input is debounced. Every scheduled fetch carries a generation number and its
// result is applied only while that generation is current, a newer input also
// cancels the context of the fetch it supersedes.
package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultDelay = 300 * time.Millisecond
	DefaultLimit = 10
)

type suggester interface {
	SuggestExercises(ctx context.Context, query string, limit int) ([]string, error)
}

type Option func(*Autocomplete)

func WithDelay(d time.Duration) Option {
	return func(a *Autocomplete) {
		a.delay = d
	}
}

func WithLimit(limit int) Option {
	return func(a *Autocomplete) {
		a.limit = limit
	}
}

type Autocomplete struct {
	suggester suggester
	delay     time.Duration
	limit     int

	mu           sync.Mutex
	value        string
	suggestions  []string
	generation   uint64
	justSelected bool
	timer        *time.Timer
	cancelFetch  context.CancelFunc
	closed       bool

	listenersMu    sync.Mutex
	listeners      map[int]func()
	nextListenerID int
}

func New(s suggester, opts ...Option) *Autocomplete {
	a := &Autocomplete{
		suggester: s,
		delay:     DefaultDelay,
		limit:     DefaultLimit,
		listeners: map[int]func(){},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Input sets the field value and schedules a suggestion fetch. The first input
// after Select only sets the value.
func (a *Autocomplete) Input(text string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.value = text
	if a.justSelected {
		a.justSelected = false
		a.mu.Unlock()
		a.notify()
		return
	}

	gen := a.supersedeLocked()
	query := strings.TrimSpace(text)
	if query == "" {
		a.suggestions = nil
		a.mu.Unlock()
		a.notify()
		return
	}
	a.timer = time.AfterFunc(a.delay, func() {
		a.fetch(gen, query)
	})
	a.mu.Unlock()

	a.notify()
}

// Select puts name in the field and clears the suggestions.
func (a *Autocomplete) Select(name string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.supersedeLocked()
	a.value = name
	a.suggestions = nil
	a.justSelected = true
	a.mu.Unlock()

	a.notify()
}

func (a *Autocomplete) Value() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

func (a *Autocomplete) Suggestions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.suggestions))
	copy(out, a.suggestions)
	return out
}

// Close stops the pending timer and cancels the fetch in flight.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.supersedeLocked()
	a.closed = true
}

// Subscribe registers fn to be called after every change and returns the func that removes it.
func (a *Autocomplete) Subscribe(fn func()) func() {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	id := a.nextListenerID
	a.nextListenerID++
	a.listeners[id] = fn
	return func() {
		a.listenersMu.Lock()
		defer a.listenersMu.Unlock()
		delete(a.listeners, id)
	}
}

// supersedeLocked invalidates everything scheduled so far and returns the new generation.
func (a *Autocomplete) supersedeLocked() uint64 {
	a.generation++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancelFetch != nil {
		a.cancelFetch()
		a.cancelFetch = nil
	}
	return a.generation
}

func (a *Autocomplete) fetch(gen uint64, query string) {
	a.mu.Lock()
	if a.closed || gen != a.generation {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelFetch = cancel
	a.mu.Unlock()
	defer cancel()

	names, err := a.suggester.SuggestExercises(ctx, query, a.limit)

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		log.Tracef("autocomplete: dropping result for superseded query [%s]", query)
		return
	}
	a.cancelFetch = nil
	if err != nil {
		a.mu.Unlock()
		log.Debugf("autocomplete: suggest [%s]: %s", query, err)
		return
	}
	a.suggestions = names
	a.mu.Unlock()

	a.notify()
}

func (a *Autocomplete) notify() {
	a.listenersMu.Lock()
	listeners := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
