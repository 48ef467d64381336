package appstate

import (
	"sync"
	"time"
)

// Date is the calendar day being viewed, kept as midnight in its location.
type Date struct {
	mu      sync.Mutex
	current time.Time

	listeners listeners[time.Time]
}

func NewDate(t time.Time) *Date {
	return &Date{current: startOfDay(t)}
}

func (d *Date) Current() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Set changes the day. Subscribers are notified only when the day changes.
func (d *Date) Set(t time.Time) {
	day := startOfDay(t)

	d.mu.Lock()
	changed := !day.Equal(d.current)
	d.current = day
	d.mu.Unlock()

	if changed {
		d.listeners.notify(day)
	}
}

// Shift moves the day by the given number of days, back when negative.
func (d *Date) Shift(days int) time.Time {
	d.mu.Lock()
	day := d.current.AddDate(0, 0, days)
	d.current = day
	d.mu.Unlock()

	if days != 0 {
		d.listeners.notify(day)
	}
	return day
}

func (d *Date) Subscribe(fn func(time.Time)) func() {
	return d.listeners.add(fn)
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}
