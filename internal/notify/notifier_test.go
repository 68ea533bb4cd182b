package notify_test

import (
	"testing"
	"time"

	"grand_hotel/internal/notify"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	n := notify.New()
	defer n.Close()

	a, cancelA := n.Subscribe(1)
	b, cancelB := n.Subscribe(1)
	defer cancelA()
	defer cancelB()

	ev := notify.Event{Type: notify.BookingConfirmed, Title: "Booking confirmed", At: time.Now()}
	n.Publish(ev)

	for name, ch := range map[string]<-chan notify.Event{"a": a, "b": b} {
		select {
		case got := <-ch:
			if got.Type != notify.BookingConfirmed {
				t.Fatalf("%s: got %s", name, got.Type)
			}
		default:
			t.Fatalf("%s: no event delivered", name)
		}
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	n := notify.New()
	defer n.Close()

	slow, cancel := n.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		// second publish overflows the buffer; it must drop, not block
		n.Publish(notify.Event{Type: notify.BookingCancelled})
		n.Publish(notify.Event{Type: notify.BookingCancelled})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Publish blocked on a full subscriber buffer")
	}
	if len(slow) != 1 {
		t.Fatalf("expected exactly one buffered event, got %d", len(slow))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := notify.New()
	defer n.Close()

	ch, cancel := n.Subscribe(1)
	cancel()
	cancel() // idempotent

	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after unsubscribe")
	}
	n.Publish(notify.Event{Type: notify.BookingPending}) // must not panic
}

func TestCloseStopsDelivery(t *testing.T) {
	n := notify.New()
	ch, _ := n.Subscribe(1)
	n.Close()

	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after Close")
	}
	n.Publish(notify.Event{Type: notify.BookingPending}) // no-op, no panic
	n.Close()                                            // idempotent
}
