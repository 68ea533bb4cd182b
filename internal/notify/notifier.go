// Package notify is an in-process publish/subscribe hub for user-facing
// events (booking confirmed, booking cancelled). It replaces ambient global
// hooks with an explicit object whose lifetime the caller owns.
package notify

import (
	"sync"
	"time"
)

type EventType string

const (
	BookingConfirmed EventType = "booking_confirmed"
	BookingPending   EventType = "booking_pending"
	BookingCancelled EventType = "booking_cancelled"
)

type Event struct {
	Type    EventType `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func New() *Notifier {
	return &Notifier{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber with the given channel buffer and
// returns the channel plus an unsubscribe func. The channel is closed on
// unsubscribe and on Close.
func (n *Notifier) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	n.subs[ch] = struct{}{}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if _, ok := n.subs[ch]; ok {
				delete(n.subs, ch)
				close(ch)
			}
		})
	}
}

// Publish fans ev out to all subscribers. A subscriber whose buffer is full
// misses the event; publishing never blocks the caller.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts the hub down and closes every subscriber channel. Further
// Publish calls are no-ops.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.subs {
		delete(n.subs, ch)
		close(ch)
	}
}
